package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/internal/model"
	"trading-agent/internal/repository"
	"trading-agent/pkg/cache"
	"trading-agent/pkg/logger"
	"trading-agent/pkg/vault"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const lamportsDecimals = 9

const msgWelcomeNewUser = "Welcome! To set up your account, please create a PIN.\n" +
	"Your PIN must be at least 8 characters, contain letters, numbers, and at least 1 special character.\n" +
	"Enter your desired PIN now."

// WalletService registers Telegram users and answers questions about their wallet.
type WalletService interface {
	Start(ctx context.Context, user dto.TelegramUser) error
	Balance(ctx context.Context, telegramID int64) error
	// HandleRegistration consumes text sent during sign-up. It reports false
	// when the user is not registering.
	HandleRegistration(ctx context.Context, user dto.TelegramUser, text string) (bool, error)
}

type walletService struct {
	cfg            *config.Config
	log            *logger.Logger
	cache          cache.Cache
	notifier       Notifier
	sealer         *vault.Sealer
	walletUserRepo repository.WalletUserRepository
	solanaRepo     repository.SolanaRepository
}

func NewWalletService(
	cfg *config.Config,
	log *logger.Logger,
	cache cache.Cache,
	notifier Notifier,
	sealer *vault.Sealer,
	walletUserRepo repository.WalletUserRepository,
	solanaRepo repository.SolanaRepository,
) WalletService {
	return &walletService{
		cfg:            cfg,
		log:            log,
		cache:          cache,
		notifier:       notifier,
		sealer:         sealer,
		walletUserRepo: walletUserRepo,
		solanaRepo:     solanaRepo,
	}
}

func (s *walletService) Start(ctx context.Context, user dto.TelegramUser) error {
	existing, err := s.walletUserRepo.GetByTelegramID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to get wallet user: %w", err)
	}

	if existing != nil {
		if existing.PublicKey == "" {
			s.log.ErrorContext(ctx, "wallet user record incomplete", logger.Int64Field("telegram_id", user.ID))
			return s.notifier.SendText(ctx, user.ID, "Something seems off with your account. Please contact support.")
		}
		return s.notifier.SendText(ctx, user.ID, fmt.Sprintf(
			"Welcome back, @%s!\n\nYour Solana address: %s\nSwaps requested for you will ask for your PIN here. Use /balance to check your balance.",
			user.Username, existing.PublicKey))
	}

	s.cache.Set(registrationKey(user.ID), &dto.RegistrationState{
		Stage:            dto.RegistrationAwaitingPIN,
		TelegramUsername: user.Username,
	}, s.cfg.Cache.RegistrationTTL)
	s.log.InfoContext(ctx, "registration started", logger.Int64Field("telegram_id", user.ID))

	return s.notifier.SendText(ctx, user.ID, msgWelcomeNewUser)
}

func (s *walletService) HandleRegistration(ctx context.Context, user dto.TelegramUser, text string) (bool, error) {
	state, ok := cache.GetAs[*dto.RegistrationState](s.cache, registrationKey(user.ID))
	if !ok {
		return false, nil
	}

	switch state.Stage {
	case dto.RegistrationAwaitingPIN:
		return true, s.acceptPIN(ctx, user, state, text)
	case dto.RegistrationAwaitingTOTP:
		return true, s.confirmTOTP(ctx, user, state, text)
	default:
		return false, nil
	}
}

func (s *walletService) acceptPIN(ctx context.Context, user dto.TelegramUser, state *dto.RegistrationState, pin string) error {
	if !vault.ValidPIN(pin) {
		return s.notifier.SendText(ctx, user.ID,
			"Invalid PIN. Must be 8+ chars, contain letters, numbers, and a special character.\nTry again.")
	}

	pinHash, err := vault.HashPIN(pin)
	if err != nil {
		return err
	}

	key, err := vault.GenerateTOTP(s.cfg.Telegram.TOTPIssuer, strconv.FormatInt(user.ID, 10))
	if err != nil {
		return err
	}
	sealedSecret, secretIV, err := s.sealer.Seal(key.Secret())
	if err != nil {
		return fmt.Errorf("failed to seal totp secret: %w", err)
	}

	state.Stage = dto.RegistrationAwaitingTOTP
	state.PinHash = pinHash
	state.PlainPIN = pin
	state.TOTPSecretEncrypted = sealedSecret
	state.TOTPSecretIV = secretIV
	s.cache.Set(registrationKey(user.ID), state, s.cfg.Cache.RegistrationTTL)

	qrCode, err := vault.QRCodePNG(key)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to render totp qr code", logger.ErrorField(err))
		return s.notifier.SendText(ctx, user.ID, "QR code generation failed. Please try again.")
	}

	return s.notifier.SendPhoto(ctx, user.ID, qrCode, fmt.Sprintf(
		"Scan this QR code in Google Authenticator (or similar), or manually enter this key:\n`%s`\nThen enter the 6-digit code to confirm setup.",
		key.Secret()))
}

func (s *walletService) confirmTOTP(ctx context.Context, user dto.TelegramUser, state *dto.RegistrationState, code string) error {
	if !vault.LooksLikeTOTPCode(code) {
		return s.notifier.SendText(ctx, user.ID, "Please enter a valid 6-digit code from your authenticator app.")
	}

	secret, err := s.sealer.Open(state.TOTPSecretEncrypted, state.TOTPSecretIV)
	if err != nil {
		return fmt.Errorf("failed to open totp secret: %w", err)
	}
	if !vault.VerifyTOTP(code, secret) {
		s.log.WarnContext(ctx, "totp verification failed", logger.Int64Field("telegram_id", user.ID))
		return s.notifier.SendText(ctx, user.ID, "Invalid TOTP code. Please try again.")
	}

	privateKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return fmt.Errorf("failed to generate wallet: %w", err)
	}
	sealedKey, err := vault.EncryptPrivateKey(privateKey, state.PlainPIN)
	if err != nil {
		return err
	}

	publicKey := privateKey.PublicKey().String()
	walletUser := &model.WalletUser{
		TelegramID:          user.ID,
		TelegramUsername:    state.TelegramUsername,
		PinHash:             state.PinHash,
		TOTPSecretEncrypted: state.TOTPSecretEncrypted,
		TOTPSecretIV:        state.TOTPSecretIV,
		PublicKey:           publicKey,
		Wallet: datatypes.NewJSONType(model.EncryptedWallet{
			EncryptedPrivateKey: sealedKey.Data,
			IV:                  sealedKey.IV,
			Salt:                sealedKey.Salt,
		}),
	}
	if err := s.walletUserRepo.Create(ctx, walletUser); err != nil {
		return fmt.Errorf("failed to save wallet user: %w", err)
	}

	s.cache.Delete(registrationKey(user.ID))
	s.log.InfoContext(ctx, "registration complete",
		logger.Int64Field("telegram_id", user.ID),
		logger.StringField("public_key", publicKey))

	return s.notifier.SendMarkdown(ctx, user.ID, fmt.Sprintf(
		"✅ 2FA setup successful!\nYour new Solana address: *%s*\n\n"+
			"Here is your *private key (hex)* (only shown once):\n\n`%s`\n\n"+
			"Keep this private key safe!\nUse /balance to check SOL.\n",
		publicKey, hex.EncodeToString(privateKey)))
}

func (s *walletService) Balance(ctx context.Context, telegramID int64) error {
	user, err := s.walletUserRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get wallet user: %w", err)
	}
	if user == nil || user.PublicKey == "" {
		return s.notifier.SendText(ctx, telegramID, "No wallet found. Use /start to register.")
	}

	owner, err := solana.PublicKeyFromBase58(user.PublicKey)
	if err != nil {
		s.log.ErrorContext(ctx, "invalid wallet public key", logger.ErrorField(err))
		return s.notifier.SendText(ctx, telegramID, "Failed to parse your wallet public key.")
	}

	lamports, err := s.solanaRepo.Balance(ctx, owner)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to fetch balance", logger.ErrorField(err))
		return s.notifier.SendText(ctx, telegramID, "Failed to fetch balance. Please try later.")
	}

	sol := decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportsDecimals)
	return s.notifier.SendText(ctx, telegramID, fmt.Sprintf("Your SOL balance: %s SOL", sol.String()))
}

func registrationKey(telegramID int64) string {
	return fmt.Sprintf(dto.RegistrationStateKey, telegramID)
}
