package repository

import (
	"time"

	"trading-agent/config"
	"trading-agent/pkg/logger"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Repository struct {
	AnalysisRepo AnalysisRepository
	AIRepo       AIRepository
	SwapRepo     SwapRepository
}

func NewRepository(cfg *config.Config, log *logger.Logger) *Repository {
	return &Repository{
		AnalysisRepo: NewAnalysisRepository(cfg, log),
		AIRepo:       NewZkAGIAIRepository(cfg, log),
		SwapRepo:     NewSwapRepository(cfg, log),
	}
}

// SwapServerRepository groups what the swap server talks to.
type SwapServerRepository struct {
	WalletUserRepo WalletUserRepository
	JupiterRepo    JupiterRepository
	SolanaRepo     SolanaRepository
}

func NewSwapServerRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *SwapServerRepository {
	return &SwapServerRepository{
		WalletUserRepo: NewWalletUserRepository(db),
		JupiterRepo:    NewJupiterRepository(cfg, log),
		SolanaRepo:     NewSolanaRepository(cfg, log),
	}
}

// newRequestLimiter spaces requests to a provider. Zero means unlimited.
func newRequestLimiter(maxRequestPerMinute int) *rate.Limiter {
	if maxRequestPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return rate.NewLimiter(rate.Every(secondsPerRequest), 1)
}
