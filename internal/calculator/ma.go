package calculator

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when a series is shorter than an
// indicator's minimum window. Callers map it to "no value".
var ErrInsufficientData = errors.New("insufficient data")

// epsilon guards zero-range denominators.
const epsilon = 1e-10

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, ErrInsufficientData
	}
	return mean(values[len(values)-period:]), nil
}

// CalculateEMA returns the last value of the exponential moving average with the given span.
// The recursion is seeded with the first value, without finite-sample adjustment.
func CalculateEMA(values []float64, span int) (float64, error) {
	if span <= 0 {
		return 0, errors.New("span must be positive")
	}
	if len(values) < span {
		return 0, ErrInsufficientData
	}
	series := CalculateEMASeries(values, span)
	return series[len(series)-1], nil
}

// CalculateEMASeries returns the full EMA series, same length as values.
func CalculateEMASeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

func tail(values []float64, n int) []float64 {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}
