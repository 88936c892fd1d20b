// internal/infra/telegram/client.go
package telegram

import (
	"context"

	domainTelegram "eara_connect_portal/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// Send delivers msg to its chat. Buttons are laid out one per row.
func (tba *TelebotAdapter) Send(ctx context.Context, msg domainTelegram.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := tba.bot.Send(telebot.ChatID(msg.ChatID), msg.Text, sendOptions(msg))
	return err
}

func sendOptions(msg domainTelegram.Message) *telebot.SendOptions {
	options := &telebot.SendOptions{DisableWebPagePreview: true}
	if msg.Markdown {
		options.ParseMode = telebot.ModeMarkdown
	}
	if len(msg.Buttons) > 0 {
		rows := make([][]telebot.InlineButton, 0, len(msg.Buttons))
		for _, b := range msg.Buttons {
			rows = append(rows, []telebot.InlineButton{{Text: b.Text, Data: b.Data}})
		}
		options.ReplyMarkup = &telebot.ReplyMarkup{InlineKeyboard: rows}
	}
	return options
}
