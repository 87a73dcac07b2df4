package telegram

import (
	"bytes"
	"context"

	"gopkg.in/telebot.v3"
)

// Sender is the part of *telebot.Bot the notifier needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// BotNotifier delivers service messages through the bot.
type BotNotifier struct {
	bot Sender
}

func NewBotNotifier(bot Sender) *BotNotifier {
	return &BotNotifier{bot: bot}
}

func (n *BotNotifier) SendText(_ context.Context, telegramID int64, text string) error {
	_, err := n.bot.Send(&telebot.User{ID: telegramID}, text)
	return err
}

func (n *BotNotifier) SendMarkdown(_ context.Context, telegramID int64, text string) error {
	_, err := n.bot.Send(&telebot.User{ID: telegramID}, text, telebot.ModeMarkdown)
	return err
}

func (n *BotNotifier) SendPhoto(_ context.Context, telegramID int64, png []byte, caption string) error {
	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	_, err := n.bot.Send(&telebot.User{ID: telegramID}, photo, telebot.ModeMarkdown)
	return err
}
