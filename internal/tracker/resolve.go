// Package tracker follows every emitted signal until it hits a stop or target.
package tracker

import "SignalSentinel/internal/model"

// Resolve evaluates a record against the current price. It is pure.
//
// Terminal statuses are sticky and a nil price leaves the status unchanged.
// Levels are checked stop-loss first, then tp3, tp2, tp1, so a price beyond
// several levels reports the most extreme one. A nil level never matches.
// A resolved trade's P&L is measured at the matched level; an open one at
// the current price.
func Resolve(rec model.TradeRecord, price *float64) model.TradeStatus {
	if rec.Status != nil && rec.Status.Terminal() {
		return rec.Status
	}
	if price == nil || rec.EntryPrice <= 0 {
		return statusOrPending(rec.Status)
	}
	p := *price

	var sign float64
	switch rec.Direction {
	case model.DirectionBuy:
		sign = 1
	case model.DirectionSell:
		sign = -1
	default:
		return statusOrPending(rec.Status)
	}

	pnl := func(level float64) float64 { return sign * (level - rec.EntryPrice) / rec.EntryPrice * 100 }
	// reached reports whether price went at least as far as level in the
	// favourable (+1) or adverse (-1) direction.
	reached := func(level *float64, way float64) bool {
		return level != nil && sign*way*(p-*level) >= 0
	}

	checks := []struct {
		level   *float64
		way     float64
		outcome model.StatusCode
	}{
		{rec.StopLoss, -1, model.StatusStopLoss},
		{rec.TP3, 1, model.StatusTakeProfit3},
		{rec.TP2, 1, model.StatusTakeProfit2},
		{rec.TP1, 1, model.StatusTakeProfit1},
	}
	for _, c := range checks {
		if reached(c.level, c.way) {
			return model.Resolved{Outcome: c.outcome, ExitPrice: p, PnLPct: pnl(*c.level)}
		}
	}
	return model.InProgress{Price: p, PnLPct: pnl(p)}
}

func statusOrPending(s model.TradeStatus) model.TradeStatus {
	if s == nil {
		return model.Pending{}
	}
	return s
}
