package repository

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAnalysisPayload = errors.New("invalid analysis payload")
	ErrNoChoices              = errors.New("zkagi returned no choices")
	ErrInvalidSwapResponse    = errors.New("invalid swap response")

	ErrInvalidJupiterResponse = errors.New("invalid jupiter response")
	ErrNoSwapRoute            = errors.New("no swap routes found for the given input/output mint")
	ErrSwapTransaction        = errors.New("failed to get swap transaction")
	ErrBlockhashExpired       = errors.New("blockhash expired")
	ErrTransactionFailed      = errors.New("transaction failed on chain")
)

// StatusError is returned when a provider answers with anything but 200.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}

// AsStatusError unwraps err into a *StatusError when it is one.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
