package service

import (
	"context"
	"encoding/json"
	"sync"

	"trading-agent/internal/dto"
	"trading-agent/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
)

type MockWalletUserRepo struct {
	mock.Mock
}

func (m *MockWalletUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.WalletUser, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletUser), args.Error(1)
}

func (m *MockWalletUserRepo) Create(ctx context.Context, user *model.WalletUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockJupiterRepo struct {
	mock.Mock
}

func (m *MockJupiterRepo) Quote(ctx context.Context, outputMint string) (json.RawMessage, error) {
	args := m.Called(ctx, outputMint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockJupiterRepo) SwapTransaction(ctx context.Context, quote json.RawMessage, userPublicKey string) (string, error) {
	args := m.Called(ctx, quote, userPublicKey)
	return args.String(0), args.Error(1)
}

type MockSolanaRepo struct {
	mock.Mock
}

func (m *MockSolanaRepo) Balance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockSolanaRepo) LatestBlockhash(ctx context.Context) (*dto.Blockhash, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Blockhash), args.Error(1)
}

func (m *MockSolanaRepo) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockSolanaRepo) ConfirmTransaction(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	args := m.Called(ctx, sig, lastValidBlockHeight)
	return args.Error(0)
}

type MockSwapExecutor struct {
	mock.Mock
}

func (m *MockSwapExecutor) Execute(ctx context.Context, owner solana.PrivateKey, outputMint string) (solana.Signature, error) {
	args := m.Called(ctx, owner, outputMint)
	return args.Get(0).(solana.Signature), args.Error(1)
}

type sentMessage struct {
	Kind       string
	TelegramID int64
	Text       string
	Photo      []byte
}

// recordingNotifier keeps every message instead of talking to Telegram.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
	err      error
}

func (n *recordingNotifier) record(msg sentMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *recordingNotifier) SendText(_ context.Context, telegramID int64, text string) error {
	return n.record(sentMessage{Kind: "text", TelegramID: telegramID, Text: text})
}

func (n *recordingNotifier) SendMarkdown(_ context.Context, telegramID int64, text string) error {
	return n.record(sentMessage{Kind: "markdown", TelegramID: telegramID, Text: text})
}

func (n *recordingNotifier) SendPhoto(_ context.Context, telegramID int64, png []byte, caption string) error {
	return n.record(sentMessage{Kind: "photo", TelegramID: telegramID, Text: caption, Photo: png})
}

func (n *recordingNotifier) last() sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return sentMessage{}
	}
	return n.messages[len(n.messages)-1]
}

func (n *recordingNotifier) texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	texts := make([]string, 0, len(n.messages))
	for _, msg := range n.messages {
		texts = append(texts, msg.Text)
	}
	return texts
}
