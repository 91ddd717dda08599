// Package backtest replays a historical bar series through the live scoring
// pipeline: snapshot, engine, risk plan and trade resolution.
package backtest

import (
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/risk"
	"SignalSentinel/internal/strategy"
	"SignalSentinel/internal/tracker"
)

// Config controls a replay.
type Config struct {
	// Window is how many bars each snapshot sees.
	Window int
	// Interval is the bar interval, used for the higher-timeframe trend.
	Interval string
	// HorizonBars is how many bars a trade stays open before it is counted.
	HorizonBars int
}

// DefaultConfig mirrors the live bot on 1h bars: a 200-bar window and a
// 6-hour review horizon.
func DefaultConfig() Config {
	return Config{Window: collector.DefaultKlineLimit, Interval: "1h", HorizonBars: 6}
}

// HorizonBars converts a review horizon into a bar count for interval,
// rounding up. Unknown intervals count one bar per hour.
func HorizonBars(horizon time.Duration, interval string) int {
	step, err := collector.IntervalDuration(interval)
	if err != nil {
		step = time.Hour
	}
	n := int((horizon + step - 1) / step)
	if n < 1 {
		n = 1
	}
	return n
}

// Trade is one replayed signal and its outcome.
type Trade struct {
	Record   model.TradeRecord
	Signal   model.Signal
	Plan     *model.RiskPlan
	ExitTime time.Time
}

// Result aggregates a replay.
type Result struct {
	Symbol  string
	Bars    int
	Signals int
	Trades  []Trade
	Wins    int
	Losses  int
	Open    int
	AvgPnL  float64
}

// WinRate is wins / (wins + losses) in percent.
func (r Result) WinRate() (float64, bool) {
	if r.Wins+r.Losses == 0 {
		return 0, false
	}
	return float64(r.Wins) / float64(r.Wins+r.Losses) * 100, true
}

// Run slides a window over bars, scores every position with engine and opens
// a trade for each qualifying signal that differs from the symbol's previous
// one. Each trade is checked against the closes of the following bars until
// it resolves or the horizon ends. No sentiment veto is applied.
func Run(symbol string, bars []model.OHLCV, engine *strategy.Engine, cfg Config) Result {
	res := Result{Symbol: symbol, Bars: len(bars)}
	if cfg.Window <= 0 || len(bars) < cfg.Window {
		return res
	}
	// Without a higher interval the trend stays NEUTRAL.
	bucket, err := collector.IntervalDuration(collector.HigherInterval(cfg.Interval))
	if err != nil {
		bucket = 0
	}

	var last model.SignalType
	var pnlSum float64
	for i := cfg.Window - 1; i < len(bars); i++ {
		window := bars[i-cfg.Window+1 : i+1]
		snap := collector.Analyze(symbol, window, 0, bars[i].Time)
		higher := model.HigherNeutral
		if bucket > 0 {
			higher = calculator.HigherTimeframeTrend(model.Closes(collector.Resample(window, bucket)))
		}

		sig := engine.Evaluate(strategy.Input{
			Snapshot:        snap,
			Price:           snap.Price,
			HigherTrend:     higher,
			VolumeConfirmed: collector.VolumeConfirmed(snap),
		})
		if !engine.Qualifies(sig) {
			continue
		}
		res.Signals++
		if sig.Type == last {
			continue
		}
		last = sig.Type

		dir := sig.Type.Direction()
		plan := risk.Calculate(snap.Price, dir, snap.ATR, snap.Support, snap.Resistance)
		trade := Trade{Signal: sig, Plan: plan, Record: open(symbol, dir, snap, plan, sig.Labels)}
		trade.ExitTime = resolve(&trade.Record, bars[i+1:], cfg.HorizonBars)

		switch st := trade.Record.Status.(type) {
		case model.Resolved:
			pnlSum += st.PnLPct
			if st.Outcome == model.StatusStopLoss {
				res.Losses++
			} else {
				res.Wins++
			}
		default:
			res.Open++
		}
		res.Trades = append(res.Trades, trade)
	}
	if n := res.Wins + res.Losses; n > 0 {
		res.AvgPnL = pnlSum / float64(n)
	}
	return res
}

func open(symbol string, dir model.Direction, snap *model.Snapshot, plan *model.RiskPlan, labels []string) model.TradeRecord {
	rec := model.TradeRecord{
		Symbol:     symbol,
		Direction:  dir,
		EntryPrice: snap.Price,
		EntryTime:  snap.At,
		Indicators: labels,
		Status:     model.Pending{},
	}
	if plan != nil {
		rec.StopLoss = model.Float(plan.StopLoss)
		rec.TP1 = model.Float(plan.TP1)
		rec.TP2 = model.Float(plan.TP2)
		rec.TP3 = model.Float(plan.TP3)
	}
	return rec
}

// resolve walks at most horizon future bars and returns the time of the last
// bar examined.
func resolve(rec *model.TradeRecord, future []model.OHLCV, horizon int) time.Time {
	var at time.Time
	for j := 0; j < horizon && j < len(future); j++ {
		price := future[j].Close
		rec.Status = tracker.Resolve(*rec, &price)
		at = future[j].Time
		if rec.Status.Terminal() {
			break
		}
	}
	return at
}
