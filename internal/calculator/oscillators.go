package calculator

import (
	"errors"
	"math"

	"SignalSentinel/internal/model"
)

// stochasticSmoothing is the %D window over %K.
const stochasticSmoothing = 3

// CalculateStochastic computes %K over the trailing period and %D as the mean of the
// last three %K values. Requires period+2 bars so that three %K values exist.
func CalculateStochastic(bars []model.OHLCV, period int) (model.Stochastic, error) {
	if period <= 0 {
		return model.Stochastic{}, errors.New("period must be positive")
	}
	if len(bars) < period+stochasticSmoothing-1 {
		return model.Stochastic{}, ErrInsufficientData
	}
	highs, lows, closes := model.Highs(bars), model.Lows(bars), model.Closes(bars)

	ks := make([]float64, 0, stochasticSmoothing)
	for end := len(bars) - stochasticSmoothing + 1; end <= len(bars); end++ {
		hh := maxOf(highs[end-period : end])
		ll := minOf(lows[end-period : end])
		ks = append(ks, 100*(closes[end-1]-ll)/(hh-ll+epsilon))
	}
	return model.Stochastic{K: ks[len(ks)-1], D: mean(ks)}, nil
}

// CalculateKDJ computes RSV over the trailing period for every bar where the window is
// full, then K = EMA3(RSV), D = EMA3(K), J = 3K - 2D.
func CalculateKDJ(bars []model.OHLCV, period int) (model.KDJ, error) {
	if period <= 0 {
		return model.KDJ{}, errors.New("period must be positive")
	}
	if len(bars) < period {
		return model.KDJ{}, ErrInsufficientData
	}
	highs, lows, closes := model.Highs(bars), model.Lows(bars), model.Closes(bars)

	rsv := make([]float64, 0, len(bars)-period+1)
	for end := period; end <= len(bars); end++ {
		hh := maxOf(highs[end-period : end])
		ll := minOf(lows[end-period : end])
		rsv = append(rsv, 100*(closes[end-1]-ll)/(hh-ll+epsilon))
	}
	k := CalculateEMASeries(rsv, 3)
	d := CalculateEMASeries(k, 3)
	kLast, dLast := k[len(k)-1], d[len(d)-1]
	return model.KDJ{K: kLast, D: dLast, J: 3*kLast - 2*dLast}, nil
}

// CalculateCCI computes the commodity channel index of the last bar:
// (tp - SMA(tp)) / (0.015 * mean absolute deviation + epsilon).
func CalculateCCI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period {
		return 0, ErrInsufficientData
	}
	window := typicalPrices(bars[len(bars)-period:])
	sma := mean(window)
	mad := 0.0
	for _, tp := range window {
		mad += math.Abs(tp - sma)
	}
	mad /= float64(period)
	return (window[len(window)-1] - sma) / (0.015*mad + epsilon), nil
}

func typicalPrices(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = (b.High + b.Low + b.Close) / 3
	}
	return out
}
