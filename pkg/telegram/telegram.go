// Package telegram is a minimal Telegram Bot API client covering the two
// calls the service needs: sending messages and long-polling for updates.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kopisahaja/kopisahaja/pkg/http"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
)

const apiBase = "https://api.telegram.org/bot"

// ErrDisabled is returned when no bot token is configured.
var ErrDisabled = fmt.Errorf("telegram: bot token not configured")

// Bot talks to the Telegram Bot API for a single bot token.
type Bot struct {
	token string
}

// New creates a Bot. An empty token yields a disabled bot whose methods
// return ErrDisabled, so callers don't need to special-case configuration.
func New(token string) *Bot {
	return &Bot{token: token}
}

// Enabled reports whether a bot token is configured.
func (b *Bot) Enabled() bool { return b.token != "" }

func (b *Bot) url(method string) string {
	return apiBase + b.token + "/" + method
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage delivers a text message to a chat.
func (b *Bot) SendMessage(ctx context.Context, chatID, text string) error {
	if !b.Enabled() {
		return ErrDisabled
	}

	resp, err := http.Post(b.url("sendMessage")).
		WithContext(ctx).
		Body(map[string]any{"chat_id": chatID, "text": text}).
		Retry(3, time.Second).
		Send()
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}

	var out apiResponse
	if err := resp.JSON(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("telegram: send message: %s", out.Description)
	}
	return nil
}

// Update is one long-polling update. Only message updates are used.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool     `json:"ok"`
	Result []Update `json:"result"`
}

// GetUpdates long-polls for updates after offset.
func (b *Bot) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	if !b.Enabled() {
		return nil, ErrDisabled
	}

	resp, err := http.Post(b.url("getUpdates")).
		WithContext(ctx).
		Timeout(40 * time.Second).
		Body(map[string]any{"offset": offset, "timeout": 30}).
		Send()
	if err != nil {
		return nil, fmt.Errorf("telegram: get updates: %w", err)
	}

	var out updatesResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("telegram: get updates rejected")
	}
	return out.Result, nil
}

// Command handles one bot command ("/start", "/track", ...). args is the
// remainder of the message after the command word.
type Command func(ctx context.Context, chatID int64, args string)

// Poll runs the long-polling loop until ctx is cancelled, dispatching
// commands to their handlers. Unknown input goes to fallback when set.
func (b *Bot) Poll(ctx context.Context, commands map[string]Command, fallback Command) {
	if !b.Enabled() {
		return
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := b.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("telegram: poll failed", "error", err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			word, args := splitCommand(u.Message.Text)
			if handler, ok := commands[word]; ok {
				handler(ctx, u.Message.Chat.ID, args)
			} else if fallback != nil {
				fallback(ctx, u.Message.Chat.ID, u.Message.Text)
			}
		}
	}
}

func splitCommand(text string) (word, args string) {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return text[:i], strings.TrimSpace(text[i+1:])
	}
	return text, ""
}
