package service

import (
	"trading-agent/config"
	"trading-agent/internal/repository"
	"trading-agent/pkg/cache"
	"trading-agent/pkg/console"
	"trading-agent/pkg/logger"
	"trading-agent/pkg/vault"
)

type Service struct {
	TradingAgentService TradingAgentService
}

func NewService(
	log *logger.Logger,
	printer *console.Printer,
	repo *repository.Repository,
) *Service {
	return &Service{
		TradingAgentService: NewTradingAgentService(log, printer, repo.AnalysisRepo, repo.AIRepo, repo.SwapRepo),
	}
}

type SwapServerService struct {
	WalletService       WalletService
	SwapApprovalService SwapApprovalService
}

func NewSwapServerService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.SwapServerRepository,
	cache cache.Cache,
	notifier Notifier,
	sealer *vault.Sealer,
) *SwapServerService {
	executor := NewSwapExecutor(cfg, log, repo.JupiterRepo, repo.SolanaRepo)

	return &SwapServerService{
		WalletService:       NewWalletService(cfg, log, cache, notifier, sealer, repo.WalletUserRepo, repo.SolanaRepo),
		SwapApprovalService: NewSwapApprovalService(cfg, log, cache, notifier, sealer, repo.WalletUserRepo, executor),
	}
}
