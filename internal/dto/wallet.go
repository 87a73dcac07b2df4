package dto

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

const (
	RegistrationStateKey = "registration:%d"
	PendingSwapKey       = "pending_swap:%d"
)

type TelegramUser struct {
	ID       int64
	Username string
}

type RegistrationStage int

const (
	RegistrationAwaitingPIN RegistrationStage = iota + 1
	RegistrationAwaitingTOTP
)

// RegistrationState follows a new user from /start until the wallet exists.
// The plain PIN lives only here, long enough to seal the new private key.
type RegistrationState struct {
	Stage               RegistrationStage
	TelegramUsername    string
	PinHash             string
	PlainPIN            string
	TOTPSecretEncrypted string
	TOTPSecretIV        string
}

type SwapApprovalStage int

const (
	SwapAwaitingPIN SwapApprovalStage = iota + 1
	SwapAwaitingTOTP
)

// PendingSwap is a swap the owner has not approved yet.
type PendingSwap struct {
	OutputMint string
	Stage      SwapApprovalStage
	PIN        string
}

type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// JupiterSwapRequest asks Jupiter to build a transaction for a quote.
type JupiterSwapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}
