package telegram

import (
	"context"
	"time"

	"trading-agent/internal/service"
	"trading-agent/pkg/logger"

	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx     context.Context
	bot     *telebot.Bot
	log     *logger.Logger
	service *service.SwapServerService
}

func NewTelegramBotHandler(
	ctx context.Context,
	log *logger.Logger,
	bot *telebot.Bot,
	service *service.SwapServerService) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:     ctx,
		log:     log,
		bot:     bot,
		service: service,
	}
}

// Start registers the handlers and long-polls until Stop is called.
func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")
	t.RegisterHandlers()
	t.bot.Start()
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{})
	go func() {
		t.bot.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}
