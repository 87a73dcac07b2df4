package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"trading-agent/config"
	"trading-agent/internal/repository"
	"trading-agent/pkg/logger"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidTransaction = errors.New("invalid swap transaction")
	ErrSignerNotFound     = errors.New("wallet is not a signer of the swap transaction")
)

// SwapExecutor swaps the configured input amount into outputMint from the
// owner's wallet through Jupiter.
type SwapExecutor interface {
	Execute(ctx context.Context, owner solana.PrivateKey, outputMint string) (solana.Signature, error)
}

type swapExecutor struct {
	log         *logger.Logger
	jupiterRepo repository.JupiterRepository
	solanaRepo  repository.SolanaRepository
	maxAttempts int
}

func NewSwapExecutor(
	cfg *config.Config,
	log *logger.Logger,
	jupiterRepo repository.JupiterRepository,
	solanaRepo repository.SolanaRepository,
) SwapExecutor {
	maxAttempts := cfg.Jupiter.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &swapExecutor{
		log:         log,
		jupiterRepo: jupiterRepo,
		solanaRepo:  solanaRepo,
		maxAttempts: maxAttempts,
	}
}

// Execute starts over with a fresh quote when the blockhash expires before
// confirmation. Any other failure ends the swap.
func (s *swapExecutor) Execute(ctx context.Context, owner solana.PrivateKey, outputMint string) (solana.Signature, error) {
	for attempt := 1; ; attempt++ {
		s.log.InfoContext(ctx, "swap attempt",
			logger.IntField("attempt", attempt),
			logger.IntField("max_attempts", s.maxAttempts),
			logger.StringField("output_mint", outputMint))

		sig, err := s.attempt(ctx, owner, outputMint)
		if err == nil {
			s.log.InfoContext(ctx, "swap confirmed",
				logger.IntField("attempt", attempt),
				logger.StringField("signature", sig.String()))
			return sig, nil
		}

		s.log.ErrorContext(ctx, "swap attempt failed", logger.IntField("attempt", attempt), logger.ErrorField(err))
		if !errors.Is(err, repository.ErrBlockhashExpired) || attempt >= s.maxAttempts {
			return solana.Signature{}, fmt.Errorf("swap failed after %d attempts: %w", attempt, err)
		}
	}
}

func (s *swapExecutor) attempt(ctx context.Context, owner solana.PrivateKey, outputMint string) (solana.Signature, error) {
	quote, err := s.jupiterRepo.Quote(ctx, outputMint)
	if err != nil {
		return solana.Signature{}, err
	}

	encoded, err := s.jupiterRepo.SwapTransaction(ctx, quote, owner.PublicKey().String())
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := decodeTransaction(encoded)
	if err != nil {
		return solana.Signature{}, err
	}

	blockhash, err := s.solanaRepo.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	tx.Message.RecentBlockhash = blockhash.Hash

	if err := signTransaction(tx, owner); err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.solanaRepo.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}

	if err := s.solanaRepo.ConfirmTransaction(ctx, sig, blockhash.LastValidBlockHeight); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

func decodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return tx, nil
}

// signTransaction puts owner's signature in its slot. Jupiter sends the
// signature list pre-sized with empty entries, so appending would misplace it.
func signTransaction(tx *solana.Transaction, owner solana.PrivateKey) error {
	signers := int(tx.Message.Header.NumRequiredSignatures)
	if signers > len(tx.Message.AccountKeys) {
		return fmt.Errorf("%w: header lists more signers than accounts", ErrInvalidTransaction)
	}

	index := -1
	for i, key := range tx.Message.AccountKeys[:signers] {
		if key.Equals(owner.PublicKey()) {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrSignerNotFound
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode transaction message: %w", err)
	}

	signature, err := owner.Sign(message)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	if len(tx.Signatures) < signers {
		signatures := make([]solana.Signature, signers)
		copy(signatures, tx.Signatures)
		tx.Signatures = signatures
	}
	tx.Signatures[index] = signature
	return nil
}
