// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const maxUnreadListed = 10

// RegisterBotCommands registers the commands any chat can use: /start, /help, /link, /unlink and /unread.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	subscriptions *app.SubscriptionService,
	relay *app.RelayService,
	portalURL string,
	baseLogger *logrus.Entry,
) {
	commandLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := commandLogger.WithFields(logrus.Fields{"command": "/start", "chat_id": chatID})
		logCtx.Info("Processing /start command")

		if subscriptions.IsAdmin(c.Sender().ID) {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Hello, %s! The EARA Connect relay is running. Use /help for the list of commands.", c.Sender().FirstName))
		}

		sub, err := subscriptions.ForChat(ctx, chatID)
		if err != nil {
			logCtx.WithError(err).Error("Error checking subscription for /start command")
			return c.Send("Something went wrong while checking this chat. Please try again later.")
		}
		if sub != nil && sub.Active {
			logCtx.WithField("user_id", sub.UserID).Info("Chat is linked")
			return c.Send(fmt.Sprintf("This chat receives EARA Connect notifications for %s.", sub.Email))
		}
		if sub != nil {
			logCtx.WithField("user_id", sub.UserID).Info("Chat was unlinked")
		}
		return c.Send(linkInstructions(portalURL))
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := commandLogger.WithFields(logrus.Fields{"command": "/help", "chat_id": c.Chat().ID})
		logCtx.Info("Processing /help command")
		return c.Send(helpText(subscriptions.IsAdmin(c.Sender().ID)), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/link", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := commandLogger.WithFields(logrus.Fields{"command": "/link", "chat_id": chatID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /link <code>\n\n" + linkInstructions(portalURL))
		}

		sub, err := subscriptions.Link(ctx, chatID, args[0])
		if err != nil {
			logWithError := logCtx.WithError(err)
			switch {
			case errors.Is(err, app.ErrInvalidLinkCode):
				logWithError.Warn("Invalid link code")
				return c.Send("That code is invalid or has expired. Generate a new one on your profile page.")
			case errors.Is(err, app.ErrChatAlreadyLinked):
				logWithError.Warn("Chat already linked to another account")
				return c.Send("This chat is already linked to another account. Send /unlink first.")
			case errors.Is(err, app.ErrRelayDisabled):
				return c.Send("Telegram notifications are not enabled on this portal.")
			default:
				logWithError.Error("Failed to link chat")
				return c.Send("Something went wrong while linking this chat. Please try again later.")
			}
		}

		logCtx.WithFields(logrus.Fields{"user_id": sub.UserID, "subscription_id": sub.ID}).Info("Chat linked")
		return c.Send(fmt.Sprintf("✅ Linked to %s. Unread portal notifications will be sent here.", sub.Email))
	})

	b.Handle("/unlink", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := commandLogger.WithFields(logrus.Fields{"command": "/unlink", "chat_id": chatID})

		sub, err := subscriptions.Unlink(ctx, chatID)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrNotLinked), errors.Is(err, app.ErrSubscriptionInactive):
				return c.Send("This chat is not linked to a portal account.")
			case errors.Is(err, app.ErrRelayDisabled):
				return c.Send("Telegram notifications are not enabled on this portal.")
			default:
				logCtx.WithError(err).Error("Failed to unlink chat")
				return c.Send("Something went wrong while unlinking this chat. Please try again later.")
			}
		}
		logCtx.WithField("user_id", sub.UserID).Info("Chat unlinked")
		return c.Send("Unlinked. You will no longer receive notifications here.")
	})

	b.Handle("/unread", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := commandLogger.WithFields(logrus.Fields{"command": "/unread", "chat_id": chatID})

		unread, err := relay.UnreadForChat(ctx, chatID)
		if err != nil {
			if errors.Is(err, app.ErrNotLinked) {
				return c.Send(linkInstructions(portalURL))
			}
			logCtx.WithError(err).Error("Failed to load unread notifications")
			return c.Send("Could not load your notifications right now. Please try again later.")
		}
		return c.Send(formatUnread(unread, portalURL))
	})
}

func linkInstructions(portalURL string) string {
	return fmt.Sprintf("To receive notifications here, open %s/profile, generate a Telegram link code and send it to me with /link <code>.", portalURL)
}

func helpText(admin bool) string {
	var help strings.Builder
	help.WriteString("Available commands:\n\n")
	help.WriteString("`/link <code>`\n - Link this chat to your portal account.\n\n")
	help.WriteString("`/unlink`\n - Stop receiving notifications here.\n\n")
	help.WriteString("`/unread`\n - List your unread notifications.\n\n")
	if admin {
		help.WriteString("Admin commands:\n\n")
		help.WriteString("`/subscribers [active|all]`\n - List linked chats. Shows active ones by default.\n\n")
		help.WriteString("`/unsubscribe <ChatID>`\n - Stop relaying to a chat.\n\n")
	}
	help.WriteString("`/help`\n - Show this message.")
	return help.String()
}

func formatUnread(unread []notification.Notification, portalURL string) string {
	if len(unread) == 0 {
		return "🎉 No unread notifications."
	}
	var out strings.Builder
	fmt.Fprintf(&out, "You have %d unread notification(s):\n", len(unread))
	for i, n := range unread {
		if i == maxUnreadListed {
			fmt.Fprintf(&out, "…and %d more.\n", len(unread)-maxUnreadListed)
			break
		}
		fmt.Fprintf(&out, "\n%s %s", n.Type.Icon(), n.Title)
	}
	fmt.Fprintf(&out, "\n\n%s/notifications", portalURL)
	return out.String()
}
