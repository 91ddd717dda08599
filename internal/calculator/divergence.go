package calculator

import (
	"math"

	"SignalSentinel/internal/model"
)

// DetectDivergence compares the latest close against the rolling max/min of
// the last period closes, and the latest oscillator value against its own
// rolling max/min over the same window. Price within 1% of its high while the
// oscillator sits more than 5% under its high is bearish; the mirror at the
// lows is bullish. NaN oscillator entries (warm-up) are dropped first.
func DetectDivergence(closes, osc []float64, period int) model.Divergence {
	values := make([]float64, 0, len(osc))
	for _, v := range osc {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if period <= 0 || len(closes) < period || len(values) < period {
		return model.DivergenceNone
	}

	price := closes[len(closes)-1]
	last := values[len(values)-1]
	priceWindow := tail(closes, period)
	oscWindow := tail(values, period)

	if price >= maxOf(priceWindow)*0.99 && last < maxOf(oscWindow)*0.95 {
		return model.DivergenceBearish
	}
	if price <= minOf(priceWindow)*1.01 && last > minOf(oscWindow)*1.05 {
		return model.DivergenceBullish
	}
	return model.DivergenceNone
}
