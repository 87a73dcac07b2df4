package model

import (
	"time"

	"gorm.io/datatypes"
)

// WalletUser is a Telegram account with its custodial Solana wallet.
type WalletUser struct {
	ID                  uint                                `gorm:"primaryKey" json:"id"`
	TelegramID          int64                               `gorm:"not null;uniqueIndex" json:"telegram_id"`
	TelegramUsername    string                              `json:"telegram_username"`
	PinHash             string                              `gorm:"not null" json:"-"`
	TOTPSecretEncrypted string                              `gorm:"column:totp_secret_encrypted;not null" json:"-"`
	TOTPSecretIV        string                              `gorm:"column:totp_secret_iv;not null" json:"-"`
	PublicKey           string                              `gorm:"not null" json:"public_key"`
	Wallet              datatypes.JSONType[EncryptedWallet] `gorm:"type:jsonb;not null" json:"-"`
	CreatedAt           time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WalletUser) TableName() string {
	return "wallet_users"
}

// EncryptedWallet is the PIN-sealed private key. Fields are hex encoded.
type EncryptedWallet struct {
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
	IV                  string `json:"iv"`
	Salt                string `json:"salt"`
}

// HasTOTP reports whether two-factor data was stored for the user.
func (u *WalletUser) HasTOTP() bool {
	return u.TOTPSecretEncrypted != "" && u.TOTPSecretIV != ""
}
