package calculator

import (
	"errors"
	"math"

	"SignalSentinel/internal/model"
)

// DirectionalIndex is the simplified ADX together with its DI lines.
type DirectionalIndex struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// TrueRanges returns max(H-L, |H-prevC|, |L-prevC|) for bars[1:].
func TrueRanges(bars []model.OHLCV) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		h, l, pc := bars[i].High, bars[i].Low, bars[i-1].Close
		out[i-1] = math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
	}
	return out
}

// CalculateATR is the simple mean of the last period true ranges.
// Requires period+1 bars.
func CalculateATR(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 0, ErrInsufficientData
	}
	return mean(tail(TrueRanges(bars), period)), nil
}

// CalculateADX computes directional movement from consecutive high/low deltas and
// averages DM and TR with a simple trailing mean. This is not Wilder's
// smoothing: the result is the single-window DX, reported as ADX.
func CalculateADX(bars []model.OHLCV, period int) (DirectionalIndex, error) {
	if period <= 0 {
		return DirectionalIndex{}, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return DirectionalIndex{}, ErrInsufficientData
	}

	plusDM := make([]float64, len(bars)-1)
	minusDM := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down {
			plusDM[i-1] = math.Max(up, 0)
		}
		if down > up {
			minusDM[i-1] = math.Max(down, 0)
		}
	}

	atr := mean(tail(TrueRanges(bars), period))
	plusDI := 100 * mean(tail(plusDM, period)) / (atr + epsilon)
	minusDI := 100 * mean(tail(minusDM, period)) / (atr + epsilon)
	dx := 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI + epsilon)

	return DirectionalIndex{ADX: dx, PlusDI: plusDI, MinusDI: minusDI}, nil
}

// HigherTimeframeTrend compares SMA(20) with SMA(50) of higher-timeframe closes.
func HigherTimeframeTrend(closes []float64) model.HigherTrend {
	sma20, err := CalculateSMA(closes, 20)
	if err != nil {
		return model.HigherNeutral
	}
	sma50, err := CalculateSMA(closes, 50)
	if err != nil {
		return model.HigherNeutral
	}
	switch {
	case sma20 > sma50:
		return model.HigherUp
	case sma20 < sma50:
		return model.HigherDown
	default:
		return model.HigherNeutral
	}
}
