// Package risk builds stop-loss and take-profit plans for a new entry.
package risk

import (
	"math"

	"SignalSentinel/internal/model"
)

const (
	// MinStopDistance is the smallest allowed gap between entry and stop, as a fraction of price.
	MinStopDistance = 0.025
	// MaxStopDistance caps the stop gap so every level stays a positive price:
	// a SELL's tp3 sits 2.5x the gap under entry.
	MaxStopDistance = 0.35
	// ATRMultiplier scales ATR into a stop distance.
	ATRMultiplier = 1.5
	// LevelBuffer offsets stops and targets from support/resistance.
	LevelBuffer = 0.002
	// RiskReward is the reward multiple of the furthest target.
	RiskReward = 2.5
)

// targetMultiples are the risk multiples of tp1, tp2 and tp3.
var targetMultiples = [3]float64{1.0, 2.0, RiskReward}

// Calculate returns the risk plan for an entry at price in direction dir.
// atr, support and resistance are optional. Any direction other than BUY or
// SELL yields nil.
//
// For a BUY the stop is the lower of 0.2% under support (when support is below
// price) and price - 1.5*ATR (2.5% of price without ATR), and never closer than
// 2.5% under price nor further than 35%. Targets sit at 1, 2 and 2.5 times the risk above price;
// tp3 is pulled in to 0.2% under resistance when that keeps it above tp2.
// SELL mirrors every rule.
func Calculate(price float64, dir model.Direction, atr, support, resistance *float64) *model.RiskPlan {
	if price <= 0 {
		return nil
	}
	var sign float64
	switch dir {
	case model.DirectionBuy:
		sign = 1
	case model.DirectionSell:
		sign = -1
	default:
		return nil
	}

	// Work in "distance below price" for BUY and "distance above" for SELL.
	stopDist := price * MinStopDistance
	if atr != nil {
		stopDist = ATRMultiplier * *atr
	}
	if lvl := protectiveLevel(price, dir, support, resistance); lvl != nil {
		stopDist = math.Max(stopDist, sign*(price-*lvl*(1-sign*LevelBuffer)))
	}
	stopDist = math.Max(stopDist, price*MinStopDistance)
	stopDist = math.Min(stopDist, price*MaxStopDistance)

	stop := price - sign*stopDist
	var tps [3]float64
	for i, m := range targetMultiples {
		tps[i] = price + sign*stopDist*m
	}
	if lvl := targetLevel(price, dir, support, resistance); lvl != nil {
		capped := *lvl * (1 - sign*LevelBuffer)
		if sign*(capped-tps[2]) < 0 && sign*(capped-tps[1]) > 0 {
			tps[2] = capped
		}
	}

	pct := func(v float64) float64 { return (v - price) / price * 100 }
	return &model.RiskPlan{
		Direction:  dir,
		Entry:      price,
		StopLoss:   stop,
		TP1:        tps[0],
		TP2:        tps[1],
		TP3:        tps[2],
		StopPct:    pct(stop),
		TP1Pct:     pct(tps[0]),
		TP2Pct:     pct(tps[1]),
		TP3Pct:     pct(tps[2]),
		RiskReward: RiskReward,
		Partials: []model.PartialExit{
			{Target: tps[0], Percent: 25, Action: model.ActionMoveStopToBreakeven},
			{Target: tps[1], Percent: 50, Action: model.ActionTrailStop},
			{Target: tps[2], Percent: 25, Action: model.ActionCloseAll},
		},
	}
}

// protectiveLevel is the level behind the entry: support under a long,
// resistance over a short.
func protectiveLevel(price float64, dir model.Direction, support, resistance *float64) *float64 {
	if dir == model.DirectionBuy && support != nil && *support < price {
		return support
	}
	if dir == model.DirectionSell && resistance != nil && *resistance > price {
		return resistance
	}
	return nil
}

// targetLevel is the level ahead of the entry that bounds tp3.
func targetLevel(price float64, dir model.Direction, support, resistance *float64) *float64 {
	if dir == model.DirectionBuy && resistance != nil && *resistance > price {
		return resistance
	}
	if dir == model.DirectionSell && support != nil && *support < price {
		return support
	}
	return nil
}
