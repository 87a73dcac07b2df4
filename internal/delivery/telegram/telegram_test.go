package telegram

import (
	"context"
	"errors"
	"testing"

	"trading-agent/internal/dto"
	"trading-agent/internal/service"
	"trading-agent/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Start(ctx context.Context, user dto.TelegramUser) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockWalletService) Balance(ctx context.Context, telegramID int64) error {
	return m.Called(ctx, telegramID).Error(0)
}

func (m *MockWalletService) HandleRegistration(ctx context.Context, user dto.TelegramUser, text string) (bool, error) {
	args := m.Called(ctx, user, text)
	return args.Bool(0), args.Error(1)
}

type MockSwapApprovalService struct {
	mock.Mock
}

func (m *MockSwapApprovalService) RequestSwap(ctx context.Context, req dto.SwapRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockSwapApprovalService) HandleApproval(ctx context.Context, telegramID int64, text string) (bool, error) {
	args := m.Called(ctx, telegramID, text)
	return args.Bool(0), args.Error(1)
}

type handlerFixture struct {
	bot      *telebot.Bot
	wallet   *MockWalletService
	approval *MockSwapApprovalService
	handler  *TelegramBotHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	bot, err := telebot.NewBot(telebot.Settings{Offline: true})
	require.NoError(t, err)

	f := &handlerFixture{
		bot:      bot,
		wallet:   new(MockWalletService),
		approval: new(MockSwapApprovalService),
	}
	f.handler = NewTelegramBotHandler(context.Background(), logger.NewNop(), bot, &service.SwapServerService{
		WalletService:       f.wallet,
		SwapApprovalService: f.approval,
	})
	return f
}

func (f *handlerFixture) message(text string) telebot.Context {
	return f.bot.NewContext(telebot.Update{Message: &telebot.Message{
		Sender: &telebot.User{ID: 77, Username: "bob"},
		Text:   text,
	}})
}

var bob = dto.TelegramUser{ID: 77, Username: "bob"}

func TestHandleText_RegistrationFirst(t *testing.T) {
	f := newHandlerFixture(t)
	f.wallet.On("HandleRegistration", mock.Anything, bob, "Secret#123").Return(true, nil)

	err := f.handler.handleText(context.Background(), f.message("  Secret#123\n"))

	require.NoError(t, err)
	f.approval.AssertNotCalled(t, "HandleApproval", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleText_FallsThroughToApproval(t *testing.T) {
	f := newHandlerFixture(t)
	f.wallet.On("HandleRegistration", mock.Anything, bob, "123456").Return(false, nil)
	f.approval.On("HandleApproval", mock.Anything, int64(77), "123456").Return(true, nil)

	err := f.handler.handleText(context.Background(), f.message("123456"))

	require.NoError(t, err)
	f.approval.AssertExpectations(t)
}

func TestHandleText_OutsideConversation(t *testing.T) {
	f := newHandlerFixture(t)
	f.wallet.On("HandleRegistration", mock.Anything, bob, "hello").Return(false, nil)
	f.approval.On("HandleApproval", mock.Anything, int64(77), "hello").Return(false, nil)

	assert.NoError(t, f.handler.handleText(context.Background(), f.message("hello")))
}

func TestHandleText_RegistrationError(t *testing.T) {
	f := newHandlerFixture(t)
	wantErr := errors.New("db down")
	f.wallet.On("HandleRegistration", mock.Anything, bob, "x").Return(true, wantErr)

	err := f.handler.handleText(context.Background(), f.message("x"))

	assert.ErrorIs(t, err, wantErr)
	f.approval.AssertNotCalled(t, "HandleApproval", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommands(t *testing.T) {
	f := newHandlerFixture(t)
	f.wallet.On("Start", mock.Anything, bob).Return(nil).Once()
	f.wallet.On("Balance", mock.Anything, int64(77)).Return(nil).Once()

	require.NoError(t, f.handler.handleStart(context.Background(), f.message("/start")))
	require.NoError(t, f.handler.handleBalance(context.Background(), f.message("/balance")))

	f.wallet.AssertExpectations(t)
}

type sentTo struct {
	recipient string
	what      interface{}
	opts      []interface{}
}

type fakeSender struct {
	sent []sentTo
	err  error
}

func (s *fakeSender) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, sentTo{recipient: to.Recipient(), what: what, opts: opts})
	return &telebot.Message{}, nil
}

func TestBotNotifier(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewBotNotifier(sender)
	ctx := context.Background()

	require.NoError(t, notifier.SendText(ctx, 42, "plain"))
	require.NoError(t, notifier.SendMarkdown(ctx, 42, "*bold*"))
	require.NoError(t, notifier.SendPhoto(ctx, 42, []byte{0x89, 'P', 'N', 'G'}, "scan me"))

	require.Len(t, sender.sent, 3)
	for _, msg := range sender.sent {
		assert.Equal(t, "42", msg.recipient)
	}
	assert.Equal(t, "plain", sender.sent[0].what)
	assert.Empty(t, sender.sent[0].opts)
	assert.Equal(t, []interface{}{telebot.ModeMarkdown}, sender.sent[1].opts)

	photo, ok := sender.sent[2].what.(*telebot.Photo)
	require.True(t, ok)
	assert.Equal(t, "scan me", photo.Caption)
	assert.NotNil(t, photo.File.FileReader)
}

func TestBotNotifier_SendError(t *testing.T) {
	wantErr := errors.New("Forbidden: bot was blocked by the user")
	notifier := NewBotNotifier(&fakeSender{err: wantErr})

	assert.ErrorIs(t, notifier.SendText(context.Background(), 42, "hi"), wantErr)
}
