package dto

import (
	"encoding/json"
	"net/http"
)

// SwapRequest is what the agent posts to the swap server.
type SwapRequest struct {
	TelegramID string `json:"telegramId" validate:"required"`
	OutputMint string `json:"outputMint" validate:"required"`
}

// SwapResult is the swap provider's answer. Body is forwarded verbatim.
type SwapResult struct {
	StatusCode int
	Body       json.RawMessage
}

func (r *SwapResult) Succeeded() bool {
	return r.StatusCode == http.StatusOK
}
