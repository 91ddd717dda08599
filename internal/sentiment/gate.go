// Package sentiment derives a coarse market bias from a basket of majors and
// vetoes signals that trade against it.
package sentiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"SignalSentinel/internal/cache"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/model"
)

// MaxBasket caps how many symbols one refresh samples.
const MaxBasket = 5

// MethodPriceBased tags sentiment computed from 24h price changes.
const MethodPriceBased = "price_based"

const cacheKey = "market"

// DefaultBasket is sampled when no basket is configured.
var DefaultBasket = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT"}

// StatsSource supplies 24h ticker statistics.
type StatsSource interface {
	Fetch24hStats(ctx context.Context, symbol string) (*model.Ticker24h, error)
}

// Config holds the basket and classification thresholds in percent.
type Config struct {
	Basket     []string
	BullishPct float64
	BearishPct float64
}

// Gate computes and caches market sentiment.
type Gate struct {
	source StatsSource
	cfg    Config
	cache  *cache.Cache[model.Sentiment]
	log    logger.Logger
	now    func() time.Time
}

// NewGate returns a gate. When both thresholds are zero they default to ±2%;
// a single zero threshold is kept.
func NewGate(source StatsSource, cfg Config, c *cache.Cache[model.Sentiment], log logger.Logger) *Gate {
	if len(cfg.Basket) == 0 {
		cfg.Basket = DefaultBasket
	}
	if cfg.BullishPct == 0 && cfg.BearishPct == 0 {
		cfg.BullishPct, cfg.BearishPct = 2, -2
	}
	return &Gate{source: source, cfg: cfg, cache: c, log: log, now: time.Now}
}

// Refresh returns the cached sentiment, recomputing it when stale or forced.
// It never fails: when every fetch fails the result is NEUTRAL.
func (g *Gate) Refresh(ctx context.Context, force bool) model.Sentiment {
	s, _ := g.cache.Refresh(ctx, cacheKey, force, func(ctx context.Context) (model.Sentiment, error) {
		return g.compute(ctx), nil
	})
	return s
}

func (g *Gate) compute(ctx context.Context) model.Sentiment {
	basket := g.cfg.Basket
	if len(basket) > MaxBasket {
		basket = basket[:MaxBasket]
	}

	var total float64
	var count int
	for _, symbol := range basket {
		t, err := g.source.Fetch24hStats(ctx, symbol)
		if err != nil {
			g.log.Warn("sentiment_fetch_failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		total += t.ChangePercent
		count++
	}

	s := model.Sentiment{Bias: model.TrendNeutral, Samples: count, Method: MethodPriceBased, UpdatedAt: g.now()}
	if count > 0 {
		s.AvgChange = total / float64(count)
		s.Bias = Classify(s.AvgChange, g.cfg.BullishPct, g.cfg.BearishPct)
	}
	g.log.Info("sentiment_refreshed", zap.String("bias", string(s.Bias)), zap.Float64("avg_change", s.AvgChange), zap.Int("samples", count))
	return s
}

// Classify maps an average 24h change to a bias. Thresholds are exclusive.
func Classify(avgChange, bullishPct, bearishPct float64) model.Trend {
	switch {
	case avgChange > bullishPct:
		return model.TrendBullish
	case avgChange < bearishPct:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}

// Blocks reports whether bias vetoes a signal: BUY-class against a bearish
// market, SELL-class against a bullish one.
func Blocks(bias model.Trend, t model.SignalType) (bool, string) {
	switch {
	case t.IsBuy() && bias == model.TrendBearish:
		return true, fmt.Sprintf("Signal blocked: Market sentiment is %s", bias)
	case t.IsSell() && bias == model.TrendBullish:
		return true, fmt.Sprintf("Signal blocked: Market sentiment is %s", bias)
	default:
		return false, ""
	}
}

// Check refreshes sentiment if stale and applies Blocks. The signal itself is
// never modified.
func (g *Gate) Check(ctx context.Context, sig model.Signal) (blocked bool, reason string) {
	return Blocks(g.Refresh(ctx, false).Bias, sig.Type)
}
