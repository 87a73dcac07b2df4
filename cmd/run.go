package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"trading-agent/internal/repository"
	"trading-agent/internal/service"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading agent once",
	RunE:  Run,
}

func Run(cmd *cobra.Command, args []string) error {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(configPath)
	if err != nil {
		return err
	}
	defer appDep.Close()

	repo := repository.NewRepository(appDep.cfg, appDep.log)
	services := service.NewService(appDep.log, appDep.printer, repo)

	return services.TradingAgentService.Run(ctx)
}
