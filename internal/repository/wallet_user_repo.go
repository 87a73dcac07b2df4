package repository

import (
	"context"
	"errors"

	"trading-agent/internal/model"

	"gorm.io/gorm"
)

type WalletUserRepository interface {
	// GetByTelegramID returns nil without error when no wallet is registered.
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.WalletUser, error)
	Create(ctx context.Context, user *model.WalletUser) error
}

type walletUserRepository struct {
	db *gorm.DB
}

func NewWalletUserRepository(db *gorm.DB) WalletUserRepository {
	return &walletUserRepository{
		db: db,
	}
}

func (r *walletUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.WalletUser, error) {
	var user model.WalletUser

	result := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &user, nil
}

func (r *walletUserRepository) Create(ctx context.Context, user *model.WalletUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}
