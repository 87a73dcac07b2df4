package cmd

import (
	"context"
	"errors"
	"fmt"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-agent/internal/delivery/http"
	"trading-agent/internal/delivery/telegram"
	"trading-agent/internal/repository"
	"trading-agent/internal/service"
	"trading-agent/pkg/cache"
	"trading-agent/pkg/logger"
	"trading-agent/pkg/postgres"
	"trading-agent/pkg/vault"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

var swapServerCmd = &cobra.Command{
	Use:   "swap-server",
	Short: "Serve POST /swap and the wallet bot that approves swaps",
	RunE:  StartSwapServer,
}

var _ service.Notifier = (*telegram.BotNotifier)(nil)

type SwapServerDependency struct {
	*AppDependency
	db          *postgres.DB
	echo        *echo.Echo
	cache       cache.Cache
	telegramBot *telebot.Bot
	sealer      *vault.Sealer
}

func NewSwapServerDependency(configPath string) (*SwapServerDependency, error) {
	appDep, err := NewAppDependency(configPath)
	if err != nil {
		return nil, err
	}
	cfg, log := appDep.cfg, appDep.log

	if problems := cfg.ValidateSwapServer(appDep.validator); len(problems) > 0 {
		return nil, fmt.Errorf("invalid swap server configuration: %v", problems)
	}

	sealer, err := vault.NewSealer(cfg.Wallet.TOTPEncryptionKey)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.ErrorField(err))
		return nil, err
	}

	pref := telebot.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &telebot.LongPoller{Timeout: cfg.Telegram.PollTimeout},
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", logger.ErrorField(err))
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Error("Failed to create telegram bot", logger.ErrorField(err))
		_ = db.Close()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	return &SwapServerDependency{
		AppDependency: appDep,
		db:            db,
		echo:          e,
		cache:         cache.NewCache(cfg.Cache.PendingSwapTTL, cfg.Cache.CleanupInterval),
		telegramBot:   bot,
		sealer:        sealer,
	}, nil
}

func (d *SwapServerDependency) Close() error {
	err := d.db.Close()
	_ = d.AppDependency.Close()
	return err
}

func StartSwapServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dep, err := NewSwapServerDependency(configPath)
	if err != nil {
		return err
	}
	defer dep.Close()

	repo := repository.NewSwapServerRepository(dep.cfg, dep.db.DB, dep.log)
	services := service.NewSwapServerService(
		dep.cfg,
		dep.log,
		repo,
		dep.cache,
		telegram.NewBotNotifier(dep.telegramBot),
		dep.sealer,
	)

	httpHandler := http.NewHttpAPIHandler(dep.echo, dep.validator, dep.log, services)
	httpHandler.SetupRoutes()
	telegramHandler := telegram.NewTelegramBotHandler(ctx, dep.log, dep.telegramBot, services)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		address := fmt.Sprintf(":%d", dep.cfg.API.Port)
		dep.log.Info("Starting HTTP server", logger.IntField("port", dep.cfg.API.Port))
		if err := dep.echo.Start(address); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		telegramHandler.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		dep.log.Info("Shutting down gracefully...")
		telegramHandler.Stop()
		return stopHTTPServer(dep)
	})

	return g.Wait()
}

func stopHTTPServer(dep *SwapServerDependency) error {
	dep.log.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := dep.echo.Shutdown(ctx); err != nil {
		dep.log.Error("Error When Stop HTTP server", logger.ErrorField(err))
		return err
	}
	dep.log.Info("HTTP server stopped successfully")
	return nil
}
