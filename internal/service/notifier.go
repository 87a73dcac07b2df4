package service

import "context"

// Notifier delivers bot messages to a Telegram user.
type Notifier interface {
	SendText(ctx context.Context, telegramID int64, text string) error
	SendMarkdown(ctx context.Context, telegramID int64, text string) error
	SendPhoto(ctx context.Context, telegramID int64, png []byte, caption string) error
}
