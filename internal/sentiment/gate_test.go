package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalSentinel/internal/cache"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/model"
)

type fakeStats struct {
	changes map[string]float64
	calls   []string
}

func (f *fakeStats) Fetch24hStats(_ context.Context, symbol string) (*model.Ticker24h, error) {
	f.calls = append(f.calls, symbol)
	c, ok := f.changes[symbol]
	if !ok {
		return nil, errors.New("unavailable")
	}
	return &model.Ticker24h{Symbol: symbol, ChangePercent: c}, nil
}

func newGate(src StatsSource, basket []string) *Gate {
	c := cache.New[model.Sentiment](cache.NewMemoryBackend[model.Sentiment](), time.Hour, logger.NewNop())
	return NewGate(src, Config{Basket: basket}, c, logger.NewNop())
}

func TestRefresh_Classification(t *testing.T) {
	tests := []struct {
		name    string
		changes map[string]float64
		want    model.Trend
		samples int
	}{
		{"bullish", map[string]float64{"BTCUSDT": 3, "ETHUSDT": 4, "BNBUSDT": 1, "SOLUSDT": 2}, model.TrendBullish, 4},
		{"bearish", map[string]float64{"BTCUSDT": -3, "ETHUSDT": -4}, model.TrendBearish, 2},
		{"exactly two is neutral", map[string]float64{"BTCUSDT": 2, "ETHUSDT": 2}, model.TrendNeutral, 2},
		{"all failed", map[string]float64{}, model.TrendNeutral, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGate(&fakeStats{changes: tc.changes}, nil)
			s := g.Refresh(context.Background(), true)
			if s.Bias != tc.want || s.Samples != tc.samples {
				t.Errorf("got %s/%d, want %s/%d", s.Bias, s.Samples, tc.want, tc.samples)
			}
			if s.Method != MethodPriceBased {
				t.Errorf("unexpected method %q", s.Method)
			}
		})
	}
}

func TestRefresh_CapsBasketAndCaches(t *testing.T) {
	src := &fakeStats{changes: map[string]float64{}}
	g := newGate(src, []string{"A", "B", "C", "D", "E", "F", "G"})
	ctx := context.Background()

	g.Refresh(ctx, false)
	if len(src.calls) != MaxBasket {
		t.Errorf("expected %d fetches, got %d", MaxBasket, len(src.calls))
	}
	g.Refresh(ctx, false)
	if len(src.calls) != MaxBasket {
		t.Errorf("expected cached result, got %d fetches", len(src.calls))
	}
	g.Refresh(ctx, true)
	if len(src.calls) != 2*MaxBasket {
		t.Errorf("expected forced refetch, got %d fetches", len(src.calls))
	}
}

func TestBlocks(t *testing.T) {
	tests := []struct {
		bias    model.Trend
		sig     model.SignalType
		blocked bool
	}{
		{model.TrendBearish, model.SignalBuy, true},
		{model.TrendBearish, model.SignalStrongBuy, true},
		{model.TrendBearish, model.SignalSell, false},
		{model.TrendBullish, model.SignalStrongSell, true},
		{model.TrendBullish, model.SignalBuy, false},
		{model.TrendNeutral, model.SignalBuy, false},
		{model.TrendNeutral, model.SignalSell, false},
		{model.TrendBearish, model.SignalWait, false},
	}
	for _, tc := range tests {
		blocked, reason := Blocks(tc.bias, tc.sig)
		if blocked != tc.blocked {
			t.Errorf("Blocks(%s, %s) = %v, want %v", tc.bias, tc.sig, blocked, tc.blocked)
		}
		if blocked && reason == "" {
			t.Errorf("Blocks(%s, %s): expected a reason", tc.bias, tc.sig)
		}
	}
}

func TestCheck_DoesNotModifySignal(t *testing.T) {
	g := newGate(&fakeStats{changes: map[string]float64{"BTCUSDT": -5}}, nil)
	sig := model.Signal{Type: model.SignalStrongBuy, Score: 9, Labels: []string{"RSI Oversold"}}
	blocked, reason := g.Check(context.Background(), sig)
	if !blocked || reason != "Signal blocked: Market sentiment is BEARISH" {
		t.Errorf("expected bearish veto, got %v %q", blocked, reason)
	}
	if sig.Type != model.SignalStrongBuy || sig.Score != 9 {
		t.Errorf("signal mutated: %+v", sig)
	}
}

func TestNewGate_ZeroThresholdKept(t *testing.T) {
	c := cache.New[model.Sentiment](cache.NewMemoryBackend[model.Sentiment](), time.Hour, logger.NewNop())
	src := &fakeStats{changes: map[string]float64{"BTCUSDT": 0.5}}
	g := NewGate(src, Config{Basket: []string{"BTCUSDT"}, BullishPct: 0, BearishPct: -2}, c, logger.NewNop())

	if s := g.Refresh(context.Background(), true); s.Bias != model.TrendBullish {
		t.Errorf("expected BULLISH above a zero threshold, got %s", s.Bias)
	}
}
