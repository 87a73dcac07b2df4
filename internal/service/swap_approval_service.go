package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/internal/model"
	"trading-agent/internal/repository"
	"trading-agent/pkg/cache"
	"trading-agent/pkg/logger"
	"trading-agent/pkg/vault"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrWalletUserNotFound = errors.New("user not found")
	ErrNotifyUser         = errors.New("failed to contact user on telegram")
)

// SwapApprovalService holds swap requests until the wallet owner approves
// them with their PIN and a TOTP code.
type SwapApprovalService interface {
	RequestSwap(ctx context.Context, req dto.SwapRequest) error
	// HandleApproval consumes text sent while a swap waits for approval. It
	// reports false when nothing is pending for the user.
	HandleApproval(ctx context.Context, telegramID int64, text string) (bool, error)
}

type swapApprovalService struct {
	cfg            *config.Config
	log            *logger.Logger
	cache          cache.Cache
	notifier       Notifier
	sealer         *vault.Sealer
	walletUserRepo repository.WalletUserRepository
	executor       SwapExecutor
}

func NewSwapApprovalService(
	cfg *config.Config,
	log *logger.Logger,
	cache cache.Cache,
	notifier Notifier,
	sealer *vault.Sealer,
	walletUserRepo repository.WalletUserRepository,
	executor SwapExecutor,
) SwapApprovalService {
	return &swapApprovalService{
		cfg:            cfg,
		log:            log,
		cache:          cache,
		notifier:       notifier,
		sealer:         sealer,
		walletUserRepo: walletUserRepo,
		executor:       executor,
	}
}

// RequestSwap parks the swap and asks the owner on Telegram to approve it. A
// newer request replaces one still waiting.
func (s *swapApprovalService) RequestSwap(ctx context.Context, req dto.SwapRequest) error {
	telegramID, err := strconv.ParseInt(req.TelegramID, 10, 64)
	if err != nil {
		return ErrWalletUserNotFound
	}

	user, err := s.walletUserRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get wallet user: %w", err)
	}
	if user == nil {
		return ErrWalletUserNotFound
	}

	s.cache.Set(pendingSwapKey(telegramID), &dto.PendingSwap{
		OutputMint: req.OutputMint,
		Stage:      dto.SwapAwaitingPIN,
	}, s.cfg.Cache.PendingSwapTTL)

	err = s.notifier.SendText(ctx, telegramID,
		fmt.Sprintf("Swap requested.\nOutput Mint: %s\n\nPlease enter your PIN to approve.", req.OutputMint))
	if err != nil {
		s.log.ErrorContext(ctx, "failed to send swap approval request", logger.ErrorField(err))
		return fmt.Errorf("%w: %v", ErrNotifyUser, err)
	}

	s.log.InfoContext(ctx, "swap waiting for approval",
		logger.Int64Field("telegram_id", telegramID),
		logger.StringField("output_mint", req.OutputMint))
	return nil
}

func (s *swapApprovalService) HandleApproval(ctx context.Context, telegramID int64, text string) (bool, error) {
	pending, ok := cache.GetAs[*dto.PendingSwap](s.cache, pendingSwapKey(telegramID))
	if !ok {
		return false, nil
	}

	switch pending.Stage {
	case dto.SwapAwaitingPIN:
		return true, s.checkPIN(ctx, telegramID, pending, text)
	case dto.SwapAwaitingTOTP:
		return true, s.checkTOTPAndSwap(ctx, telegramID, pending, text)
	default:
		return false, nil
	}
}

func (s *swapApprovalService) checkPIN(ctx context.Context, telegramID int64, pending *dto.PendingSwap, pin string) error {
	user, err := s.walletUserRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get wallet user: %w", err)
	}

	if user == nil || user.PinHash == "" {
		s.cache.Delete(pendingSwapKey(telegramID))
		return s.notifier.SendText(ctx, telegramID, "No user record found, cannot authenticate.")
	}

	if !vault.PINMatches(user.PinHash, pin) {
		s.cache.Delete(pendingSwapKey(telegramID))
		s.log.WarnContext(ctx, "swap denied: wrong pin", logger.Int64Field("telegram_id", telegramID))
		return s.notifier.SendText(ctx, telegramID, "Invalid PIN. Transaction denied.")
	}

	pending.Stage = dto.SwapAwaitingTOTP
	pending.PIN = pin
	s.cache.Set(pendingSwapKey(telegramID), pending, s.cfg.Cache.PendingSwapTTL)

	return s.notifier.SendText(ctx, telegramID, "PIN verified. Now enter your 2FA code (6-digit).")
}

func (s *swapApprovalService) checkTOTPAndSwap(ctx context.Context, telegramID int64, pending *dto.PendingSwap, code string) error {
	if !vault.LooksLikeTOTPCode(code) {
		return s.notifier.SendText(ctx, telegramID, "Please enter a valid 6-digit code from your authenticator app.")
	}

	user, err := s.walletUserRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get wallet user: %w", err)
	}

	// From here the pending swap is used up whatever happens.
	defer s.cache.Delete(pendingSwapKey(telegramID))

	if user == nil || !user.HasTOTP() {
		return s.notifier.SendText(ctx, telegramID, "No 2FA data found. Cannot authenticate.")
	}

	secret, err := s.sealer.Open(user.TOTPSecretEncrypted, user.TOTPSecretIV)
	if err != nil {
		return fmt.Errorf("failed to open totp secret: %w", err)
	}
	if !vault.VerifyTOTP(code, secret) {
		s.log.WarnContext(ctx, "swap denied: wrong 2fa code", logger.Int64Field("telegram_id", telegramID))
		return s.notifier.SendText(ctx, telegramID, "Invalid 2FA code. Transaction denied.")
	}

	if err := s.notifier.SendText(ctx, telegramID, "2FA verified, executing swap. Please wait..."); err != nil {
		return err
	}

	sig, err := s.swap(ctx, user, pending)
	if err != nil {
		s.log.ErrorContext(ctx, "swap failed", logger.Int64Field("telegram_id", telegramID), logger.ErrorField(err))
		return s.notifier.SendText(ctx, telegramID, fmt.Sprintf("Swap failed: %s", err.Error()))
	}

	txid := sig.String()
	return s.notifier.SendText(ctx, telegramID,
		fmt.Sprintf("Swap successful!\nTXID: %s\n\nView on Solscan: https://solscan.io/tx/%s", txid, txid))
}

func (s *swapApprovalService) swap(ctx context.Context, user *model.WalletUser, pending *dto.PendingSwap) (solana.Signature, error) {
	wallet := user.Wallet.Data()
	privateKey, err := vault.DecryptPrivateKey(vault.EncryptedKey{
		Data: wallet.EncryptedPrivateKey,
		IV:   wallet.IV,
		Salt: wallet.Salt,
	}, pending.PIN)
	if err != nil {
		return solana.Signature{}, err
	}

	return s.executor.Execute(ctx, solana.PrivateKey(privateKey), pending.OutputMint)
}

func pendingSwapKey(telegramID int64) string {
	return fmt.Sprintf(dto.PendingSwapKey, telegramID)
}
