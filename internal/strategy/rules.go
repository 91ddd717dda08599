package strategy

import "SignalSentinel/internal/model"

// Vote is the contribution of one rule to the buy and sell accumulators.
// An empty Label contributes points without a display entry.
type Vote struct {
	Buy   int
	Sell  int
	Label string
}

// Rule is one named entry of the ordered checklist.
type Rule struct {
	Name string
	Eval func(in Input) Vote
}

// Default thresholds for the oscillator rules.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// DefaultRules is the checklist in evaluation order. Order determines the
// order of labels on the resulting Signal.
var DefaultRules = []Rule{
	{"rsi_extreme", ruleRSIExtreme},
	{"rsi_tilt", ruleRSITilt},
	{"divergence", ruleDivergence},
	{"macd_hist", ruleMACDHist},
	{"macd_cross", ruleMACDCross},
	{"kdj_extreme", ruleKDJExtreme},
	{"kdj_j", ruleKDJOverflow},
	{"cci", ruleCCI},
	{"vwap", ruleVWAP},
	{"stochastic", ruleStochastic},
	{"htf_trend", ruleHigherTrend},
	{"high_volume", ruleHighVolume},
	{"obv_trend", ruleOBVTrend},
	{"sma50", ruleSMA50},
	{"sma200", ruleSMA200},
}

func ruleRSIExtreme(in Input) Vote {
	rsi := in.Snapshot.RSI
	switch {
	case rsi == nil:
		return Vote{}
	case *rsi < RSIOversold:
		return Vote{Buy: 3, Label: "RSI Oversold"}
	case *rsi > RSIOverbought:
		return Vote{Sell: 3, Label: "RSI Overbought"}
	}
	return Vote{}
}

func ruleRSITilt(in Input) Vote {
	rsi := in.Snapshot.RSI
	switch {
	case rsi == nil:
		return Vote{}
	case *rsi < 40:
		return Vote{Buy: 1}
	case *rsi > 60:
		return Vote{Sell: 1}
	}
	return Vote{}
}

func ruleDivergence(in Input) Vote {
	switch in.Snapshot.Divergence {
	case model.DivergenceBullish:
		return Vote{Buy: 4, Label: "Bullish Divergence"}
	case model.DivergenceBearish:
		return Vote{Sell: 4, Label: "Bearish Divergence"}
	}
	return Vote{}
}

func ruleMACDHist(in Input) Vote {
	m := in.Snapshot.MACD
	if m == nil {
		return Vote{}
	}
	switch {
	case m.Hist > 0:
		v := Vote{Buy: 2}
		if m.Hist > 0.5 {
			v.Label = "MACD Strong Bullish"
		}
		return v
	case m.Hist < 0:
		v := Vote{Sell: 2}
		if m.Hist < -0.5 {
			v.Label = "MACD Strong Bearish"
		}
		return v
	}
	return Vote{}
}

func ruleMACDCross(in Input) Vote {
	m := in.Snapshot.MACD
	switch {
	case m == nil:
		return Vote{}
	case m.Line > m.Signal:
		return Vote{Buy: 1}
	case m.Line < m.Signal:
		return Vote{Sell: 1}
	}
	return Vote{}
}

func ruleKDJExtreme(in Input) Vote {
	k := in.Snapshot.KDJ
	switch {
	case k == nil:
		return Vote{}
	case k.K < 20 && k.D < 20:
		return Vote{Buy: 2, Label: "KDJ Oversold"}
	case k.K > 80 && k.D > 80:
		return Vote{Sell: 2, Label: "KDJ Overbought"}
	}
	return Vote{}
}

func ruleKDJOverflow(in Input) Vote {
	k := in.Snapshot.KDJ
	switch {
	case k == nil:
		return Vote{}
	case k.J < 0:
		return Vote{Buy: 1}
	case k.J > 100:
		return Vote{Sell: 1}
	}
	return Vote{}
}

func ruleCCI(in Input) Vote {
	cci := in.Snapshot.CCI
	switch {
	case cci == nil:
		return Vote{}
	case *cci < -100:
		return Vote{Buy: 2, Label: "CCI Oversold"}
	case *cci > 100:
		return Vote{Sell: 2, Label: "CCI Overbought"}
	}
	return Vote{}
}

func ruleVWAP(in Input) Vote {
	vwap := in.Snapshot.VWAP
	switch {
	case vwap == nil:
		return Vote{}
	case in.Price > *vwap:
		return Vote{Buy: 1}
	case in.Price < *vwap:
		return Vote{Sell: 1}
	}
	return Vote{}
}

func ruleStochastic(in Input) Vote {
	s := in.Snapshot.Stochastic
	switch {
	case s == nil:
		return Vote{}
	case s.K < 20:
		return Vote{Buy: 1}
	case s.K > 80:
		return Vote{Sell: 1}
	}
	return Vote{}
}

// ruleHigherTrend only counts the higher timeframe when ADX confirms a trend.
func ruleHigherTrend(in Input) Vote {
	adx := in.Snapshot.ADX
	if adx == nil || *adx <= 25 {
		return Vote{}
	}
	switch in.HigherTrend {
	case model.HigherUp:
		return Vote{Buy: 2, Label: "HTF Trend Confirm"}
	case model.HigherDown:
		return Vote{Sell: 2, Label: "HTF Trend Confirm"}
	}
	return Vote{}
}

// ruleHighVolume credits both sides; it breaks ties rather than picking one.
func ruleHighVolume(in Input) Vote {
	vp := in.Snapshot.VolumeProfile
	if vp == nil || *vp <= 1.5 || !in.VolumeConfirmed {
		return Vote{}
	}
	return Vote{Buy: 1, Sell: 1, Label: "High Volume"}
}

func ruleOBVTrend(in Input) Vote {
	switch in.Snapshot.OBVTrend {
	case model.TrendBullish:
		return Vote{Buy: 1}
	case model.TrendBearish:
		return Vote{Sell: 1}
	}
	return Vote{}
}

func ruleSMA50(in Input) Vote {
	sma := in.Snapshot.SMA50
	switch {
	case sma == nil:
		return Vote{}
	case in.Price > *sma:
		return Vote{Buy: 1}
	case in.Price < *sma:
		return Vote{Sell: 1}
	}
	return Vote{}
}

// ruleSMA200 credits the sell side when price sits exactly on the average.
func ruleSMA200(in Input) Vote {
	sma := in.Snapshot.SMA200
	switch {
	case sma == nil:
		return Vote{}
	case in.Price > *sma:
		return Vote{Buy: 1}
	default:
		return Vote{Sell: 1}
	}
}
