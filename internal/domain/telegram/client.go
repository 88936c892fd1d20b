package telegram

import "context"

// Button is an inline keyboard button; Data comes back in the callback query.
type Button struct {
	Text string
	Data string
}

// Message is an outbound chat message.
type Message struct {
	ChatID   int64
	Text     string
	Markdown bool
	Buttons  []Button
}

// Client delivers messages to Telegram chats, hiding the bot library from the app layer.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
