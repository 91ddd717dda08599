package calculator

import (
	"errors"
	"math"

	"SignalSentinel/internal/model"
)

// CalculateBollinger computes SMA(period) ± k standard deviations, using the
// population deviation of the same window.
func CalculateBollinger(closes []float64, period int, k float64) (model.Bands, error) {
	if period <= 0 {
		return model.Bands{}, errors.New("period must be positive")
	}
	if len(closes) < period {
		return model.Bands{}, ErrInsufficientData
	}
	window := tail(closes, period)
	mid := mean(window)
	variance := 0.0
	for _, v := range window {
		d := v - mid
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))
	return model.Bands{Upper: mid + k*sd, Mid: mid, Lower: mid - k*sd}, nil
}
