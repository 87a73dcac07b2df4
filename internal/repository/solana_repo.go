package repository

import (
	"context"
	"fmt"
	"time"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/pkg/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// sendMaxRetries is how often the RPC node itself rebroadcasts a transaction.
const sendMaxRetries uint = 2

type SolanaRepository interface {
	Balance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (*dto.Blockhash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// ConfirmTransaction waits until sig is confirmed. It returns
	// ErrBlockhashExpired once the chain passes lastValidBlockHeight.
	ConfirmTransaction(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error
}

type solanaRepository struct {
	client       *rpc.Client
	logger       *logger.Logger
	pollInterval time.Duration
}

func NewSolanaRepository(cfg *config.Config, log *logger.Logger) SolanaRepository {
	return &solanaRepository{
		client:       rpc.New(cfg.Solana.RPCURL),
		logger:       log,
		pollInterval: cfg.Solana.ConfirmPollInterval,
	}
}

func (r *solanaRepository) Balance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	result, err := r.client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

func (r *solanaRepository) LatestBlockhash(ctx context.Context) (*dto.Blockhash, error) {
	result, err := r.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return &dto.Blockhash{
		Hash:                 result.Value.Blockhash,
		LastValidBlockHeight: result.Value.LastValidBlockHeight,
	}, nil
}

func (r *solanaRepository) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	maxRetries := sendMaxRetries
	sig, err := r.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight: true,
		MaxRetries:    &maxRetries,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "transaction submitted", logger.StringField("signature", sig.String()))
	return sig, nil
}

func (r *solanaRepository) ConfirmTransaction(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		statuses, err := r.client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return fmt.Errorf("failed to get signature status: %w", err)
		}

		if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				r.logger.InfoContext(ctx, "transaction confirmed", logger.StringField("signature", sig.String()))
				return nil
			}
		}

		height, err := r.client.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
		if err != nil {
			return fmt.Errorf("failed to get block height: %w", err)
		}
		if height > lastValidBlockHeight {
			return ErrBlockhashExpired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
