package calculator

import (
	"math"
	"time"

	"SignalSentinel/internal/model"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// risingBars returns n bars climbing one unit per bar, closing on the high.
func risingBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		base := 100.0 + float64(i)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   base,
			High:   base + 1,
			Low:    base,
			Close:  base + 1,
			Volume: 10,
		}
	}
	return bars
}

func flatBars(n int, price float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Open: price, High: price, Low: price, Close: price, Volume: 5}
	}
	return bars
}

func waveCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 5*math.Sin(float64(i)/3) + float64(i%7)*0.3
	}
	return out
}
