package model

import "strings"

// SignalType is the discrete classification produced by the strategy engine.
type SignalType string

const (
	SignalStrongBuy  SignalType = "STRONG_BUY"
	SignalBuy        SignalType = "BUY"
	SignalSell       SignalType = "SELL"
	SignalStrongSell SignalType = "STRONG_SELL"
	SignalWait       SignalType = "WAIT"
)

// IsBuy reports whether the signal is BUY or STRONG_BUY.
func (s SignalType) IsBuy() bool { return s == SignalBuy || s == SignalStrongBuy }

// IsSell reports whether the signal is SELL or STRONG_SELL.
func (s SignalType) IsSell() bool { return s == SignalSell || s == SignalStrongSell }

// IsStrong reports whether the signal is one of the STRONG variants.
func (s SignalType) IsStrong() bool { return s == SignalStrongBuy || s == SignalStrongSell }

// Direction maps a signal to the trade direction it implies.
// WAIT maps to the empty direction.
func (s SignalType) Direction() Direction {
	switch {
	case s.IsBuy():
		return DirectionBuy
	case s.IsSell():
		return DirectionSell
	default:
		return ""
	}
}

// Display returns the signal with underscores replaced, e.g. "STRONG BUY".
func (s SignalType) Display() string { return strings.ReplaceAll(string(s), "_", " ") }

// Direction is the side of a trade recommendation.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Signal is the output of one scoring pass over a Snapshot.
// Labels keep evaluation order; display code truncates from the end.
type Signal struct {
	Type   SignalType
	Score  int
	Labels []string
}
