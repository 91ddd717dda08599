package strategy

import "SignalSentinel/internal/model"

// Default engine parameters.
const (
	DefaultBuyThreshold     = 5
	DefaultSellThreshold    = 5
	DefaultStrongMultiplier = 1.5
	DefaultMinEmitScore     = 6
)

// Input is everything one scoring pass reads.
type Input struct {
	Snapshot        *model.Snapshot
	Price           float64
	HigherTrend     model.HigherTrend
	VolumeConfirmed bool
}

// Engine classifies snapshots into signals. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	BuyThreshold     int
	SellThreshold    int
	StrongMultiplier float64
	MinEmitScore     int
	Rules            []Rule
}

// NewEngine returns an engine with the default thresholds and rule set.
func NewEngine() *Engine {
	return &Engine{
		BuyThreshold:     DefaultBuyThreshold,
		SellThreshold:    DefaultSellThreshold,
		StrongMultiplier: DefaultStrongMultiplier,
		MinEmitScore:     DefaultMinEmitScore,
		Rules:            DefaultRules,
	}
}

// Evaluate runs every rule in order and classifies the accumulated scores.
// Buy is checked first, so it wins when both sides clear their threshold.
func (e *Engine) Evaluate(in Input) model.Signal {
	if in.Snapshot == nil {
		return model.Signal{Type: model.SignalWait}
	}

	var buy, sell int
	labels := []string{}
	for _, r := range e.Rules {
		v := r.Eval(in)
		buy += v.Buy
		sell += v.Sell
		if v.Label != "" {
			labels = append(labels, v.Label)
		}
	}

	return model.Signal{
		Type:   e.classify(buy, sell),
		Score:  max(buy, sell),
		Labels: labels,
	}
}

func (e *Engine) classify(buy, sell int) model.SignalType {
	b, s := float64(buy), float64(sell)
	switch {
	case b >= float64(e.BuyThreshold)*e.StrongMultiplier:
		return model.SignalStrongBuy
	case buy >= e.BuyThreshold:
		return model.SignalBuy
	case s >= float64(e.SellThreshold)*e.StrongMultiplier:
		return model.SignalStrongSell
	case sell >= e.SellThreshold:
		return model.SignalSell
	default:
		return model.SignalWait
	}
}

// Qualifies reports whether a signal is worth emitting: any STRONG signal, or
// a plain BUY/SELL whose score reaches MinEmitScore.
func (e *Engine) Qualifies(sig model.Signal) bool {
	switch {
	case sig.Type.IsStrong():
		return true
	case sig.Type == model.SignalBuy || sig.Type == model.SignalSell:
		return sig.Score >= e.MinEmitScore
	default:
		return false
	}
}
