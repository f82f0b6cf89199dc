package server

import (
	"context"
	"strconv"

	"github.com/kopisahaja/kopisahaja/app/notifications"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
	"github.com/kopisahaja/kopisahaja/pkg/telegram"
)

const botHelp = "KopiSahaja bot commands:\n" +
	"/track <order id> - get updates for your order\n" +
	"/help - show this message"

// runBot long-polls Telegram and serves /start, /help and /track. The
// /track command links the chat to an order so status changes reach it.
func runBot(ctx context.Context, app *App) {
	if !app.Bot.Enabled() {
		return
	}
	logger.Info("server: telegram bot polling started")

	reply := func(ctx context.Context, chatID int64, text string) {
		if err := app.Bot.SendMessage(ctx, strconv.FormatInt(chatID, 10), text); err != nil {
			logger.Warn("bot: reply failed", "chat_id", chatID, "error", err)
		}
	}

	app.Bot.Poll(ctx, map[string]telegram.Command{
		"/start": func(ctx context.Context, chatID int64, _ string) {
			reply(ctx, chatID, "👋 Welcome to KopiSahaja!\n\n"+botHelp)
		},
		"/help": func(ctx context.Context, chatID int64, _ string) {
			reply(ctx, chatID, botHelp)
		},
		"/track": func(ctx context.Context, chatID int64, args string) {
			if args == "" {
				reply(ctx, chatID, "Usage: /track <order id>")
				return
			}
			order, err := app.Orders.LinkTelegram(args, strconv.FormatInt(chatID, 10))
			if err != nil {
				reply(ctx, chatID, "Sorry, I couldn't find that order. Check the id and try again.")
				return
			}
			reply(ctx, chatID, notifications.OrderSummary(order))
		},
	}, func(ctx context.Context, chatID int64, _ string) {
		reply(ctx, chatID, "I didn't understand that.\n\n"+botHelp)
	})
}
