package metrics

import "github.com/prometheus/client_golang/prometheus"

// Order-lifecycle metrics.
var (
	// OrdersCreated counts placed orders.
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kopisahaja",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total orders placed.",
	})

	// StatusTransitions counts order status changes by edge.
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kopisahaja",
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Total order status transitions.",
		},
		[]string{"from", "to"},
	)

	// NotificationsSent counts outbound notification deliveries.
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kopisahaja",
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Total notification delivery attempts.",
		},
		[]string{"channel", "status"}, // status: "sent" | "failed"
	)
)

func init() {
	DefaultRegistry.MustRegister(OrdersCreated, StatusTransitions, NotificationsSent)
}
