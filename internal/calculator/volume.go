package calculator

import (
	"errors"

	"SignalSentinel/internal/model"
)

// CalculateVWAP is cumulative typical price × volume over cumulative volume across the
// whole supplied series. Zero total volume yields no value.
func CalculateVWAP(bars []model.OHLCV) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrInsufficientData
	}
	var pv, vol float64
	for _, b := range bars {
		pv += (b.High + b.Low + b.Close) / 3 * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return 0, ErrInsufficientData
	}
	return pv / vol, nil
}

// CalculateOBVSeries returns the running on-balance volume, seeded at zero.
func CalculateOBVSeries(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// CalculateOBV returns the last on-balance volume value. Requires two bars.
func CalculateOBV(closes, volumes []float64) (float64, error) {
	if len(closes) < 2 || len(volumes) != len(closes) {
		return 0, ErrInsufficientData
	}
	series := CalculateOBVSeries(closes, volumes)
	return series[len(series)-1], nil
}

// OBVTrend is BULLISH only if every consecutive pair of the last period OBV
// values strictly increases, BEARISH only if every pair strictly decreases.
// Anything else, including short input, is NEUTRAL.
func OBVTrend(closes, volumes []float64, period int) model.Trend {
	if period < 2 || len(closes) < period+1 || len(volumes) != len(closes) {
		return model.TrendNeutral
	}
	return ClassifyMonotonic(tail(CalculateOBVSeries(closes, volumes), period))
}

// ClassifyMonotonic classifies a window as strictly increasing, strictly
// decreasing or neither.
func ClassifyMonotonic(window []float64) model.Trend {
	if len(window) < 2 {
		return model.TrendNeutral
	}
	up, down := true, true
	for i := 1; i < len(window); i++ {
		if !(window[i-1] < window[i]) {
			up = false
		}
		if !(window[i-1] > window[i]) {
			down = false
		}
	}
	switch {
	case up:
		return model.TrendBullish
	case down:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}

// CalculateVolumeProfile is the last volume divided by the mean of the last period volumes.
func CalculateVolumeProfile(volumes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(volumes) < period {
		return 0, ErrInsufficientData
	}
	return volumes[len(volumes)-1] / (mean(tail(volumes, period)) + epsilon), nil
}

// ClassifyVolume labels the last volume high (>1.5× avg), low (<0.5× avg) or
// normal. Short input is normal.
func ClassifyVolume(volumes []float64, period int) model.VolumeStatus {
	if period <= 0 || len(volumes) < period {
		return model.VolumeNormal
	}
	avg := mean(tail(volumes, period))
	current := volumes[len(volumes)-1]
	switch {
	case current > avg*1.5:
		return model.VolumeHigh
	case current < avg*0.5:
		return model.VolumeLow
	default:
		return model.VolumeNormal
	}
}
