// Package notification provides a multi-channel notification dispatcher.
//
// Define a Notification:
//
//	type OrderReadyNotification struct { Order models.Order }
//	func (n *OrderReadyNotification) Via() []string { return []string{"telegram"} }
//	func (n *OrderReadyNotification) ToTelegram() notification.TelegramData {
//	    return notification.TelegramData{ChatID: n.Order.TelegramChatID, Text: "..."}
//	}
//
// Send:
//
//	notification.Send("user@example.com", &OrderReadyNotification{Order: order})
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/kopisahaja/kopisahaja/pkg/http"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
	"github.com/kopisahaja/kopisahaja/pkg/mail"
	"github.com/kopisahaja/kopisahaja/pkg/metrics"
	"github.com/kopisahaja/kopisahaja/pkg/telegram"
)

// ------------------- Channel data structs -------------------

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// TelegramData carries a Telegram chat message.
type TelegramData struct {
	ChatID string
	Text   string
}

// WebhookData carries an arbitrary JSON payload to POST to a URL.
type WebhookData struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// ------------------- Notification interface -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the list of channel names: "mail", "telegram", "webhook".
	Via() []string
}

// Mailable can be implemented to support the mail channel.
type Mailable interface {
	ToMail() MailData
}

// Telegramable can be implemented to support the Telegram channel.
type Telegramable interface {
	ToTelegram() TelegramData
}

// Webhookable can be implemented to support the webhook channel.
type Webhookable interface {
	ToWebhook() WebhookData
}

// ------------------- Global config -------------------

var defaultBot *telegram.Bot

// SetTelegramBot wires the bot used by the telegram channel. Call once at
// boot; without it the channel reports telegram.ErrDisabled.
func SetTelegramBot(b *telegram.Bot) { defaultBot = b }

// ------------------- Send -------------------

// Send dispatches the notification through all channels returned by Via().
// address is typically an email address used for the mail channel.
func Send(address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		err := dispatch(address, channel, n)
		if err != nil {
			logger.Error("notification: channel failed",
				"channel", channel, "error", err)
			metrics.NotificationsSent.WithLabelValues(channel, "failed").Inc()
			errs = append(errs, err)
			continue
		}
		metrics.NotificationsSent.WithLabelValues(channel, "sent").Inc()
	}
	return errs
}

// SendAsync dispatches the notification in a background goroutine.
func SendAsync(address string, n Notification) {
	go func() {
		if errs := Send(address, n); len(errs) > 0 {
			for _, e := range errs {
				logger.Error("notification: async error", "error", e)
			}
		}
	}()
}

func dispatch(address, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(address, m.ToMail())

	case "telegram":
		t, ok := n.(Telegramable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Telegramable", n)
		}
		return sendTelegram(t.ToTelegram())

	case "webhook":
		wh, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", n)
		}
		return sendWebhook(wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func sendMail(address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}

	body := d.Body
	if body == "" {
		body = d.Text
	}

	return mail.To(to).Subject(d.Subject).Body(body).Send()
}

// ------------------- Telegram channel -------------------

func sendTelegram(d TelegramData) error {
	if defaultBot == nil {
		return telegram.ErrDisabled
	}
	if d.ChatID == "" {
		return fmt.Errorf("notification: telegram chat id is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return defaultBot.SendMessage(ctx, d.ChatID, d.Text)
}

// ------------------- Webhook channel -------------------

func sendWebhook(d WebhookData) error {
	if d.URL == "" {
		return fmt.Errorf("notification: webhook URL is empty")
	}

	resp, err := http.Post(d.URL).
		Headers(d.Headers).
		Body(d.Payload).
		Timeout(10 * time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("notification: webhook send: %w", err)
	}
	return resp.Throw()
}
