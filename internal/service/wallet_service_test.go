package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"trading-agent/config"
	"trading-agent/internal/dto"
	"trading-agent/internal/model"
	"trading-agent/pkg/cache"
	"trading-agent/pkg/logger"
	"trading-agent/pkg/vault"

	"github.com/gagliardetto/solana-go"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSealingKey = "0123456789abcdef0123456789abcdef"
	testPIN        = "hunter2!pass"
	testTelegramID = int64(424242)
)

func newSwapServerConfig() *config.Config {
	return &config.Config{
		Telegram: config.Telegram{TOTPIssuer: "MyBot"},
		Cache: config.Cache{
			PendingSwapTTL:  time.Minute,
			RegistrationTTL: time.Minute,
			CleanupInterval: time.Minute,
		},
		Jupiter: config.Jupiter{MaxAttempts: 2},
	}
}

func newTestSealer(t *testing.T) *vault.Sealer {
	t.Helper()
	sealer, err := vault.NewSealer(testSealingKey)
	require.NoError(t, err)
	return sealer
}

type walletFixture struct {
	cache          cache.Cache
	notifier       *recordingNotifier
	sealer         *vault.Sealer
	walletUserRepo *MockWalletUserRepo
	solanaRepo     *MockSolanaRepo
	service        WalletService
}

func newWalletFixture(t *testing.T) *walletFixture {
	f := &walletFixture{
		cache:          cache.NewCache(time.Minute, time.Minute),
		notifier:       &recordingNotifier{},
		sealer:         newTestSealer(t),
		walletUserRepo: new(MockWalletUserRepo),
		solanaRepo:     new(MockSolanaRepo),
	}
	f.service = NewWalletService(newSwapServerConfig(), logger.NewNop(), f.cache, f.notifier, f.sealer, f.walletUserRepo, f.solanaRepo)
	return f
}

func (f *walletFixture) registration() *dto.RegistrationState {
	state, _ := cache.GetAs[*dto.RegistrationState](f.cache, registrationKey(testTelegramID))
	return state
}

func TestWalletService_Start(t *testing.T) {
	user := dto.TelegramUser{ID: testTelegramID, Username: "alice"}

	t.Run("new user starts registration", func(t *testing.T) {
		f := newWalletFixture(t)
		f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).Return(nil, nil)

		require.NoError(t, f.service.Start(context.Background(), user))

		state := f.registration()
		require.NotNil(t, state)
		assert.Equal(t, dto.RegistrationAwaitingPIN, state.Stage)
		assert.Equal(t, "alice", state.TelegramUsername)
		assert.Equal(t, msgWelcomeNewUser, f.notifier.last().Text)
	})

	t.Run("registered user gets their address", func(t *testing.T) {
		f := newWalletFixture(t)
		f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).
			Return(&model.WalletUser{TelegramID: testTelegramID, PublicKey: "So1anaAddress"}, nil)

		require.NoError(t, f.service.Start(context.Background(), user))

		assert.Nil(t, f.registration())
		assert.Contains(t, f.notifier.last().Text, "Welcome back, @alice!")
		assert.Contains(t, f.notifier.last().Text, "So1anaAddress")
	})

	t.Run("record without address", func(t *testing.T) {
		f := newWalletFixture(t)
		f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).
			Return(&model.WalletUser{TelegramID: testTelegramID}, nil)

		require.NoError(t, f.service.Start(context.Background(), user))

		assert.Equal(t, "Something seems off with your account. Please contact support.", f.notifier.last().Text)
	})

	t.Run("lookup error", func(t *testing.T) {
		f := newWalletFixture(t)
		f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).Return(nil, errors.New("db down"))

		err := f.service.Start(context.Background(), user)

		require.Error(t, err)
		assert.Empty(t, f.notifier.texts())
	})
}

func TestWalletService_HandleRegistration_NotRegistering(t *testing.T) {
	f := newWalletFixture(t)

	handled, err := f.service.HandleRegistration(context.Background(), dto.TelegramUser{ID: testTelegramID}, testPIN)

	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, f.notifier.texts())
}

func TestWalletService_Registration(t *testing.T) {
	ctx := context.Background()
	user := dto.TelegramUser{ID: testTelegramID, Username: "alice"}
	f := newWalletFixture(t)
	f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).Return(nil, nil)
	require.NoError(t, f.service.Start(ctx, user))

	// weak PIN keeps the user at the PIN step
	handled, err := f.service.HandleRegistration(ctx, user, "password")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, f.notifier.last().Text, "Invalid PIN. Must be 8+ chars")
	assert.Equal(t, dto.RegistrationAwaitingPIN, f.registration().Stage)

	handled, err = f.service.HandleRegistration(ctx, user, testPIN)
	require.NoError(t, err)
	assert.True(t, handled)

	qr := f.notifier.last()
	assert.Equal(t, "photo", qr.Kind)
	assert.NotEmpty(t, qr.Photo)
	assert.Contains(t, qr.Text, "Scan this QR code")

	state := f.registration()
	require.NotNil(t, state)
	assert.Equal(t, dto.RegistrationAwaitingTOTP, state.Stage)
	assert.True(t, vault.PINMatches(state.PinHash, testPIN))
	secret, err := f.sealer.Open(state.TOTPSecretEncrypted, state.TOTPSecretIV)
	require.NoError(t, err)
	assert.Contains(t, qr.Text, secret)

	handled, err = f.service.HandleRegistration(ctx, user, "12ab56")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "Please enter a valid 6-digit code from your authenticator app.", f.notifier.last().Text)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	wrongCode := "000000"
	if code == wrongCode {
		wrongCode = "111111"
	}
	handled, err = f.service.HandleRegistration(ctx, user, wrongCode)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "Invalid TOTP code. Please try again.", f.notifier.last().Text)

	var saved *model.WalletUser
	f.walletUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.WalletUser")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.WalletUser) }).
		Return(nil).Once()

	handled, err = f.service.HandleRegistration(ctx, user, code)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Nil(t, f.registration())

	require.NotNil(t, saved)
	assert.Equal(t, testTelegramID, saved.TelegramID)
	assert.Equal(t, "alice", saved.TelegramUsername)
	assert.True(t, saved.HasTOTP())

	wallet := saved.Wallet.Data()
	privateKey, err := vault.DecryptPrivateKey(vault.EncryptedKey{
		Data: wallet.EncryptedPrivateKey,
		IV:   wallet.IV,
		Salt: wallet.Salt,
	}, testPIN)
	require.NoError(t, err)
	assert.Equal(t, saved.PublicKey, solana.PrivateKey(privateKey).PublicKey().String())

	done := f.notifier.last()
	assert.Equal(t, "markdown", done.Kind)
	assert.Contains(t, done.Text, "2FA setup successful")
	assert.Contains(t, done.Text, saved.PublicKey)
}

func TestWalletService_Registration_SaveFails(t *testing.T) {
	ctx := context.Background()
	user := dto.TelegramUser{ID: testTelegramID, Username: "alice"}
	f := newWalletFixture(t)
	f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).Return(nil, nil)
	f.walletUserRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))
	require.NoError(t, f.service.Start(ctx, user))
	_, err := f.service.HandleRegistration(ctx, user, testPIN)
	require.NoError(t, err)

	state := f.registration()
	secret, err := f.sealer.Open(state.TOTPSecretEncrypted, state.TOTPSecretIV)
	require.NoError(t, err)
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	handled, err := f.service.HandleRegistration(ctx, user, code)

	assert.True(t, handled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save wallet user")
	assert.NotNil(t, f.registration())
}

func TestWalletService_Balance(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	tests := []struct {
		name     string
		user     *model.WalletUser
		lamports uint64
		rpcErr   error
		want     string
	}{
		{
			name: "not registered",
			want: "No wallet found. Use /start to register.",
		},
		{
			name: "broken public key",
			user: &model.WalletUser{PublicKey: "not-base58-0OIl"},
			want: "Failed to parse your wallet public key.",
		},
		{
			name:   "rpc failure",
			user:   &model.WalletUser{PublicKey: owner.String()},
			rpcErr: errors.New("429 too many requests"),
			want:   "Failed to fetch balance. Please try later.",
		},
		{
			name:     "balance in sol",
			user:     &model.WalletUser{PublicKey: owner.String()},
			lamports: 1_500_000_000,
			want:     "Your SOL balance: 1.5 SOL",
		},
		{
			name:     "dust",
			user:     &model.WalletUser{PublicKey: owner.String()},
			lamports: 5000,
			want:     "Your SOL balance: 0.000005 SOL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWalletFixture(t)
			if tt.user == nil {
				f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).Return(nil, nil)
			} else {
				f.walletUserRepo.On("GetByTelegramID", mock.Anything, testTelegramID).Return(tt.user, nil)
			}
			f.solanaRepo.On("Balance", mock.Anything, owner).Return(tt.lamports, tt.rpcErr)

			require.NoError(t, f.service.Balance(context.Background(), testTelegramID))

			assert.Equal(t, tt.want, f.notifier.last().Text)
		})
	}
}
