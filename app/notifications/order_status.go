// Package notifications defines the outbound messages the service sends
// through pkg/notification channels.
package notifications

import (
	"fmt"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/notification"
)

// statusMessages are the per-status Telegram templates. %s is the order id.
var statusMessages = map[models.Status]string{
	models.StatusPending:   "🕒 Order %s received! We'll start preparing it shortly.",
	models.StatusPreparing: "☕ Your order %s is being prepared!",
	models.StatusReady:     "✅ Your order %s is ready for pickup!",
	models.StatusCompleted: "🎉 Order %s completed. Thank you for choosing KopiSahaja!",
	models.StatusCancelled: "❌ Your order %s has been cancelled. Contact us if this is unexpected.",
}

// OrderStatus tells a customer their order changed state.
type OrderStatus struct {
	OrderID string
	ChatID  string
	Status  models.Status
}

func (n *OrderStatus) Via() []string { return []string{"telegram"} }

func (n *OrderStatus) ToTelegram() notification.TelegramData {
	tmpl, ok := statusMessages[n.Status]
	if !ok {
		tmpl = "Order %s was updated."
	}
	return notification.TelegramData{
		ChatID: n.ChatID,
		Text:   fmt.Sprintf(tmpl, n.OrderID),
	}
}

// OrderSummary is the reply to a successful /track command.
func OrderSummary(order models.Order) string {
	return fmt.Sprintf(
		"📋 Order %s\nCustomer: %s\nStatus: %s\nTotal: %.2f\n\nYou'll get updates here as your order progresses.",
		order.ID, order.CustomerName, order.Status, order.TotalAmount)
}
