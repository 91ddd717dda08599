package calculator

import (
	"errors"

	"SignalSentinel/internal/model"
)

// DefaultLookback is the support/resistance window in bars.
const DefaultLookback = 50

// CalculateSupportResistance scans the most recent lookback bars and returns the lowest
// low as support and the highest high as resistance.
func CalculateSupportResistance(bars []model.OHLCV, lookback int) (support, resistance float64, err error) {
	if lookback <= 0 {
		return 0, 0, errors.New("lookback must be positive")
	}
	if len(bars) < lookback {
		return 0, 0, ErrInsufficientData
	}
	recent := bars[len(bars)-lookback:]
	return minOf(model.Lows(recent)), maxOf(model.Highs(recent)), nil
}

// CalculateRangePosition returns where the current price sits between support and
// resistance (0.0~1.0).
func CalculateRangePosition(current, support, resistance float64) (float64, error) {
	if resistance == support {
		return 0.5, nil
	}
	if resistance < support {
		return 0, errors.New("resistance must be >= support")
	}
	pos := (current - support) / (resistance - support)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
