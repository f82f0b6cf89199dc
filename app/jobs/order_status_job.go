// Package jobs defines the background jobs processed by the queue workers.
package jobs

import (
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/notifications"
	"github.com/kopisahaja/kopisahaja/pkg/notification"
	"github.com/kopisahaja/kopisahaja/pkg/queue"
)

// OrderStatusNotification delivers a status-change message to the Telegram
// chat linked to an order. It runs on the queue so a slow or failing
// Telegram API never delays the status update itself.
type OrderStatusNotification struct {
	OrderID string        `json:"order_id"`
	ChatID  string        `json:"chat_id"`
	Status  models.Status `json:"status"`
}

// NewOrderStatus builds the job from an order's current state.
func NewOrderStatus(order models.Order) *OrderStatusNotification {
	return &OrderStatusNotification{
		OrderID: order.ID,
		ChatID:  order.TelegramChatID,
		Status:  order.Status,
	}
}

func (j *OrderStatusNotification) Handle() error {
	errs := notification.Send("", &notifications.OrderStatus{
		OrderID: j.OrderID,
		ChatID:  j.ChatID,
		Status:  j.Status,
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func init() {
	queue.Register("*jobs.OrderStatusNotification", func() queue.Job {
		return &OrderStatusNotification{}
	})
}
