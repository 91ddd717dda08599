package calculator

import "SignalSentinel/internal/model"

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// CalculateMACD computes EMA(12) - EMA(26), its EMA(9) signal line and the histogram
// for the last bar. Requires at least 26 closes.
func CalculateMACD(closes []float64) (model.MACD, error) {
	if len(closes) < macdSlow {
		return model.MACD{}, ErrInsufficientData
	}
	fast := CalculateEMASeries(closes, macdFast)
	slow := CalculateEMASeries(closes, macdSlow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := CalculateEMASeries(line, macdSignal)
	last := len(closes) - 1
	return model.MACD{
		Line:   line[last],
		Signal: signal[last],
		Hist:   line[last] - signal[last],
	}, nil
}
