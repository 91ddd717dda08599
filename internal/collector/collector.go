package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"SignalSentinel/internal/cache"
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
)

// Indicator windows used when building a snapshot.
const (
	RSIPeriod        = 14
	BollingerPeriod  = 20
	BollingerK       = 2.0
	StochasticPeriod = 14
	ADXPeriod        = 14
	ATRPeriod        = 14
	KDJPeriod        = 9
	CCIPeriod        = 20
	OBVTrendPeriod   = 10
	VolumePeriod     = 20
	DivergencePeriod = 20

	// HigherTrendBars is how many higher-timeframe bars HigherTrend asks for.
	HigherTrendBars = 60
)

// DefaultKlineLimit is the base-timeframe history fetched per symbol.
const DefaultKlineLimit = 200

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Bars   []model.OHLCV
	Change float64
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchKlines(_ context.Context, _, interval string, limit int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	step, err := IntervalDuration(interval)
	if err != nil {
		step = time.Hour
	}
	return generateMockBars(m.Price, limit, step), nil
}

func (m *MockFetcher) FetchCurrentPrice(context.Context, string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func (m *MockFetcher) Fetch24hStats(_ context.Context, symbol string) (*model.Ticker24h, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &model.Ticker24h{Symbol: symbol, ChangePercent: m.Change}, nil
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().Truncate(step).Add(-time.Duration(count) * step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Analyze builds the indicator snapshot of one symbol from its bars. Price is
// the last close. Indicators without enough history stay nil. Returns nil
// for an empty series.
func Analyze(symbol string, bars []model.OHLCV, change24h float64, now time.Time) *model.Snapshot {
	if len(bars) == 0 {
		return nil
	}
	closes := model.Closes(bars)
	volumes := model.Volumes(bars)

	snap := &model.Snapshot{
		Symbol:       symbol,
		At:           now,
		Price:        closes[len(closes)-1],
		Change24h:    change24h,
		OBVTrend:     calculator.OBVTrend(closes, volumes, OBVTrendPeriod),
		VolumeStatus: calculator.ClassifyVolume(volumes, VolumePeriod),
		Divergence:   model.DivergenceNone,
	}

	snap.RSI = value(calculator.CalculateRSI(closes, RSIPeriod))
	if m, err := calculator.CalculateMACD(closes); err == nil {
		snap.MACD = &m
	}
	if b, err := calculator.CalculateBollinger(closes, BollingerPeriod, BollingerK); err == nil {
		snap.Bollinger = &b
	}
	if s, err := calculator.CalculateStochastic(bars, StochasticPeriod); err == nil {
		snap.Stochastic = &s
	}
	if di, err := calculator.CalculateADX(bars, ADXPeriod); err == nil {
		snap.ADX = model.Float(di.ADX)
	}
	snap.ATR = value(calculator.CalculateATR(bars, ATRPeriod))
	if sup, res, err := calculator.CalculateSupportResistance(bars, calculator.DefaultLookback); err == nil {
		snap.Support = model.Float(sup)
		snap.Resistance = model.Float(res)
		snap.RangePos = value(calculator.CalculateRangePosition(snap.Price, sup, res))
	}
	if k, err := calculator.CalculateKDJ(bars, KDJPeriod); err == nil {
		snap.KDJ = &k
	}
	snap.VWAP = value(calculator.CalculateVWAP(bars))
	snap.CCI = value(calculator.CalculateCCI(bars, CCIPeriod))
	snap.OBV = value(calculator.CalculateOBV(closes, volumes))
	snap.VolumeProfile = value(calculator.CalculateVolumeProfile(volumes, VolumePeriod))
	if series, err := calculator.CalculateRSISeries(closes, RSIPeriod); err == nil {
		snap.Divergence = calculator.DetectDivergence(closes, series, DivergencePeriod)
	}
	snap.SMA50 = value(calculator.CalculateSMA(closes, 50))
	snap.SMA200 = value(calculator.CalculateSMA(closes, 200))
	snap.EMA50 = value(calculator.CalculateEMA(closes, 50))
	snap.EMA200 = value(calculator.CalculateEMA(closes, 200))

	return snap
}

func value(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return model.Float(v)
}

// VolumeConfirmed reports whether the last bar traded on at least normal volume.
func VolumeConfirmed(snap *model.Snapshot) bool {
	return snap != nil && snap.VolumeStatus != model.VolumeLow
}

// Collector orchestrates data fetching, indicator computation and the
// per-symbol snapshot cache.
type Collector struct {
	fetcher  Fetcher
	interval string
	limit    int
	cache    *cache.Cache[*model.Snapshot]
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewCollector creates a collector for the given base interval.
// A nil metrics is allowed.
func NewCollector(fetcher Fetcher, interval string, limit int, snapshots *cache.Cache[*model.Snapshot], log logger.Logger, m *metrics.Metrics) *Collector {
	if limit <= 0 {
		limit = DefaultKlineLimit
	}
	return &Collector{
		fetcher:  fetcher,
		interval: interval,
		limit:    limit,
		cache:    snapshots,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// Fetcher returns the underlying market data source.
func (c *Collector) Fetcher() Fetcher { return c.fetcher }

// Interval returns the base timeframe.
func (c *Collector) Interval() string { return c.interval }

// Collect returns the snapshot of symbol, rebuilding it when the cached one is
// older than the cache TTL or force is set. A failed 24h stats call only
// zeroes the change; a failed klines call fails the symbol.
func (c *Collector) Collect(ctx context.Context, symbol string, force bool) (*model.Snapshot, error) {
	return c.cache.Refresh(ctx, symbol, force, func(ctx context.Context) (*model.Snapshot, error) {
		bars, err := c.fetcher.FetchKlines(ctx, symbol, c.interval, c.limit)
		if err != nil {
			c.metrics.ObserveFetchError("klines")
			return nil, fmt.Errorf("collect %s: %w", symbol, err)
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("collect %s: no bars", symbol)
		}

		var change float64
		if stats, err := c.fetcher.Fetch24hStats(ctx, symbol); err != nil {
			c.metrics.ObserveFetchError("ticker_24h")
			c.log.Warn("ticker_24h_failed", zap.String("symbol", symbol), zap.Error(err))
		} else {
			change = stats.ChangePercent
		}

		return Analyze(symbol, bars, change, c.now()), nil
	})
}

// HigherTrend classifies the trend of the next timeframe up. When the higher
// interval cannot be fetched it falls back to resampling base bars. Intervals
// with nothing above them are NEUTRAL.
func (c *Collector) HigherTrend(ctx context.Context, symbol string) model.HigherTrend {
	higher := HigherInterval(c.interval)
	if higher == "" {
		return model.HigherNeutral
	}
	bars, err := c.fetcher.FetchKlines(ctx, symbol, higher, HigherTrendBars)
	if err == nil && len(bars) >= 50 {
		return calculator.HigherTimeframeTrend(model.Closes(bars))
	}
	if err != nil {
		c.metrics.ObserveFetchError("klines_htf")
		c.log.Warn("higher_trend_fetch_failed", zap.String("symbol", symbol), zap.String("interval", higher), zap.Error(err))
	}

	bucket, derr := IntervalDuration(higher)
	if derr != nil {
		return model.HigherNeutral
	}
	base, err := c.fetcher.FetchKlines(ctx, symbol, c.interval, c.limit)
	if err != nil {
		return model.HigherNeutral
	}
	return calculator.HigherTimeframeTrend(model.Closes(Resample(base, bucket)))
}
