package dto

import "strings"

// Signal is the categorical recommendation returned by the analysis provider.
type Signal string

const (
	SignalBuy     Signal = "buy"
	SignalSell    Signal = "sell"
	SignalHold    Signal = "hold"
	SignalUnknown Signal = "unknown"
)

// ParseSignal matches raw against the known signals ignoring case. The match
// is exact otherwise: " buy" is unknown.
func ParseSignal(raw string) Signal {
	switch strings.ToLower(raw) {
	case string(SignalBuy):
		return SignalBuy
	case string(SignalSell):
		return SignalSell
	case string(SignalHold):
		return SignalHold
	default:
		return SignalUnknown
	}
}

func (s Signal) IsBuy() bool {
	return s == SignalBuy
}
