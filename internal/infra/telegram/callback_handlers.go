package telegram

import (
	"context"
	"errors"
	"fmt"

	"eara_connect_portal/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterCallbackHandlers handles the inline "Mark as read" buttons attached to relayed notifications.
func RegisterCallbackHandlers(ctx context.Context, b *telebot.Bot, relay *app.RelayService, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "callback", "chat_id": c.Chat().ID, "data": data})

		id, ok := app.ParseReadCallback(data)
		if !ok {
			c.Bot().OnError(fmt.Errorf("unhandled callback data: %s", data), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}

		err := relay.MarkReadFromChat(ctx, c.Chat().ID, id)
		switch {
		case err == nil:
		case errors.Is(err, app.ErrUnknownNotification):
			logCtx.Debug("Notification already read")
			_ = c.Edit(readText(c))
			return c.Respond(&telebot.CallbackResponse{Text: "Already marked as read."})
		case errors.Is(err, app.ErrNotLinked):
			return c.Respond(&telebot.CallbackResponse{Text: "This chat is no longer linked.", ShowAlert: true})
		default:
			c.Bot().OnError(fmt.Errorf("error marking notification %d read: %w", id, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		if err := c.Edit(readText(c)); err != nil {
			logCtx.WithError(err).Warn("Could not update relayed message")
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Marked as read ✅"})
	})
}

// readText is the relayed message with its button removed and a read marker appended.
func readText(c telebot.Context) string {
	if msg := c.Message(); msg != nil {
		return msg.Text + "\n\n✅ Read"
	}
	return "✅ Read"
}
