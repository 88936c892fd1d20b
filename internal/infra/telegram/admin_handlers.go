package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedText = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers the commands reserved for the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, subscriptions *app.SubscriptionService, baseLogger *logrus.Entry) {
	b.Handle("/subscribers", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/subscribers",
			"sender_id": c.Sender().ID,
		})
		if !subscriptions.IsAdmin(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedText)
		}

		listType := "active"
		if args := c.Args(); len(args) > 0 {
			listType = strings.ToLower(args[0])
		}
		handlerLogger = handlerLogger.WithField("list_type", listType)

		var title string
		switch listType {
		case "active":
			title = "Active subscriptions"
		case "all":
			title = "All subscriptions"
		default:
			handlerLogger.Warn("Invalid list type argument")
			return c.Send("Invalid argument. Use 'active' or 'all', or leave it empty to list active subscriptions.")
		}

		subs, err := subscriptions.List(ctx, c.Sender().ID, listType == "all")
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list subscriptions")
			return c.Send(fmt.Sprintf("Could not list subscriptions: %s", err.Error()))
		}
		if len(subs) == 0 {
			if listType == "active" {
				return c.Send("No active subscriptions.")
			}
			return c.Send("No chats have been linked yet.")
		}

		handlerLogger.WithField("subscriptions_count", len(subs)).Info("Listed subscriptions")
		return c.Send(formatSubscriptions(title, subs))
	})

	b.Handle("/unsubscribe", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/unsubscribe",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if !subscriptions.IsAdmin(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedText)
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Invalid format. Use: /unsubscribe <ChatID>")
		}
		chatID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid chat ID format")
			return c.Send("Error: the chat ID must be a number.")
		}
		handlerLogger = handlerLogger.WithField("target_chat_id", chatID)

		sub, err := subscriptions.Deactivate(ctx, c.Sender().ID, chatID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrNotLinked):
				logWithError.Warn("Subscription to deactivate not found")
				return c.Send(fmt.Sprintf("No subscription found for chat %d.", chatID))
			case errors.Is(err, app.ErrSubscriptionInactive):
				logWithError.Warn("Subscription already inactive")
				return c.Send(fmt.Sprintf("Chat %d (%s) was already unsubscribed.", chatID, sub.Email))
			default:
				logWithError.Error("Failed to deactivate subscription")
				return c.Send(fmt.Sprintf("Could not unsubscribe the chat: %s", err.Error()))
			}
		}

		handlerLogger.WithField("subscription_id", sub.ID).Info("Subscription deactivated")
		return c.Send(fmt.Sprintf("Chat %d (%s) will no longer receive notifications.", sub.ChatID, sub.Email))
	})
}

func formatSubscriptions(title string, subs []*notification.Subscription) string {
	var response strings.Builder
	fmt.Fprintf(&response, "--- %s ---\n", title)
	for _, s := range subs {
		status := "inactive"
		if s.Active {
			status = "active"
		}
		fmt.Fprintf(&response, "ID: %d, Chat ID: %d, User ID: %d, Email: %s, Status: %s\n", s.ID, s.ChatID, s.UserID, s.Email, status)
	}
	return response.String()
}
