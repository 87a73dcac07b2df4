package telegram

import (
	"context"
	"strings"
	"time"

	"trading-agent/internal/dto"
	"trading-agent/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) WithContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(t.ctx, 5*time.Minute)
		defer cancel()

		if sender := c.Sender(); sender != nil {
			ctx, _ = t.log.Scoped(ctx, logger.Int64Field("telegram_id", sender.ID))
		}

		return handler(ctx, c)
	}
}

func (t *TelegramBotHandler) RegisterHandlers() {
	t.bot.Handle("/start", t.WithContext(t.handleStart))
	t.bot.Handle("/balance", t.WithContext(t.handleBalance))
	t.bot.Handle(telebot.OnText, t.WithContext(t.handleText))
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	return t.service.WalletService.Start(ctx, telegramUser(c))
}

func (t *TelegramBotHandler) handleBalance(ctx context.Context, c telebot.Context) error {
	return t.service.WalletService.Balance(ctx, c.Sender().ID)
}

// handleText routes free text to whichever conversation the sender is in.
// Registration wins over a pending swap.
func (t *TelegramBotHandler) handleText(ctx context.Context, c telebot.Context) error {
	user := telegramUser(c)
	text := strings.TrimSpace(c.Text())

	handled, err := t.service.WalletService.HandleRegistration(ctx, user, text)
	if err != nil || handled {
		return err
	}

	handled, err = t.service.SwapApprovalService.HandleApproval(ctx, user.ID, text)
	if err != nil || handled {
		return err
	}

	t.log.DebugContext(ctx, "ignoring message outside a conversation", logger.Int64Field("telegram_id", user.ID))
	return nil
}

func telegramUser(c telebot.Context) dto.TelegramUser {
	sender := c.Sender()
	return dto.TelegramUser{ID: sender.ID, Username: sender.Username}
}
