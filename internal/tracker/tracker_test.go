package tracker

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
)

type fakePrices map[string]float64

func (f fakePrices) FetchCurrentPrice(_ context.Context, symbol string) (float64, error) {
	p, ok := f[symbol]
	if !ok {
		return 0, errors.New("no quote")
	}
	return p, nil
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) (*Tracker, *recorder.JSONStore) {
	t.Helper()
	store := recorder.NewJSONStore(filepath.Join(t.TempDir(), "trades.json"))
	tr, err := New(context.Background(), store, 0, logger.NewNop())
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tr, store
}

func plan(sl, tp1, tp2, tp3 float64) *model.RiskPlan {
	return &model.RiskPlan{StopLoss: sl, TP1: tp1, TP2: tp2, TP3: tp3}
}

func TestTracker_OpenPersistsPending(t *testing.T) {
	ctx := context.Background()
	tr, store := newTracker(t)

	rec := tr.Open(ctx, "BTCUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), []string{"RSI Oversold"}, t0)
	if rec.ID == "" {
		t.Error("expected generated id")
	}
	if !rec.ReviewAt.Equal(t0.Add(DefaultHorizon)) {
		t.Errorf("expected review at +6h, got %v", rec.ReviewAt)
	}
	if rec.Status.Code() != model.StatusPendingReview {
		t.Errorf("expected pending, got %s", rec.Status.Code())
	}

	saved, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(saved) != 1 || saved[0].ID != rec.ID || *saved[0].TP2 != 110 {
		t.Errorf("store not updated: %+v", saved)
	}
}

func TestTracker_OpenWithoutPlan(t *testing.T) {
	tr, _ := newTracker(t)
	rec := tr.Open(context.Background(), "ETHUSDT", model.DirectionSell, 2000, nil, nil, t0)
	if rec.StopLoss != nil || rec.TP1 != nil || rec.TP2 != nil || rec.TP3 != nil {
		t.Errorf("expected nil levels, got %+v", rec)
	}
}

func TestTracker_Due(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	tr.Open(ctx, "BTCUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), nil, t0)
	tr.Open(ctx, "ETHUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), nil, t0.Add(time.Hour))

	if n := len(tr.Due(t0.Add(5 * time.Hour))); n != 0 {
		t.Errorf("expected nothing due before the horizon, got %d", n)
	}
	if n := len(tr.Due(t0.Add(6 * time.Hour))); n != 1 {
		t.Errorf("expected 1 due at the deadline, got %d", n)
	}
	if n := len(tr.Due(t0.Add(8 * time.Hour))); n != 2 {
		t.Errorf("expected 2 due, got %d", n)
	}
}

func TestTracker_Review(t *testing.T) {
	ctx := context.Background()
	tr, store := newTracker(t)
	tr.Open(ctx, "BTCUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), []string{"a"}, t0)
	tr.Open(ctx, "ETHUSDT", model.DirectionSell, 100, plan(105, 95, 90, 85), []string{"b"}, t0)
	tr.Open(ctx, "SOLUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), []string{"c"}, t0)
	tr.Open(ctx, "BNBUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), []string{"d"}, t0)

	prices := fakePrices{"BTCUSDT": 94, "ETHUSDT": 89, "SOLUSDT": 101}
	report := tr.Review(ctx, t0.Add(7*time.Hour), prices)

	if report.Successful != 1 || report.Failed != 1 || report.Pending != 2 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if len(report.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(report.Entries))
	}
	want := []model.StatusCode{model.StatusStopLoss, model.StatusTakeProfit2, model.StatusInProgress, model.StatusPendingReview}
	for i, e := range report.Entries {
		if e.Record.Status.Code() != want[i] {
			t.Errorf("entry %d (%s): expected %s, got %s", i, e.Record.Symbol, want[i], e.Record.Status.Code())
		}
	}
	if rate, ok := report.WinRate(); !ok || rate != 50 {
		t.Errorf("expected 50%% win rate, got %.1f (%v)", rate, ok)
	}

	saved, _ := store.Load(ctx)
	if saved[0].Status.Code() != model.StatusStopLoss {
		t.Errorf("review not persisted: %s", saved[0].Status.Code())
	}

	// Resolved trades drop out; open ones come back.
	if n := len(tr.Due(t0.Add(8 * time.Hour))); n != 2 {
		t.Errorf("expected 2 still due, got %d", n)
	}
	report = tr.Review(ctx, t0.Add(8*time.Hour), fakePrices{"SOLUSDT": 106, "BNBUSDT": 80})
	if report.Successful != 1 || report.Failed != 1 || report.Pending != 0 {
		t.Errorf("unexpected second pass counts: %+v", report)
	}
}

func TestTracker_ReviewNothingDue(t *testing.T) {
	tr, _ := newTracker(t)
	report := tr.Review(context.Background(), t0, fakePrices{})
	if len(report.Entries) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
	if _, ok := report.WinRate(); ok {
		t.Error("expected no win rate on an empty report")
	}
}

func TestTracker_Stats(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTracker(t)
	tr.Open(ctx, "BTCUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), nil, t0)
	tr.Open(ctx, "ETHUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), nil, t0)
	tr.Open(ctx, "SOLUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), nil, t0)
	tr.Open(ctx, "BNBUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), nil, t0.Add(24*time.Hour))

	tr.Review(ctx, t0.Add(7*time.Hour), fakePrices{"BTCUSDT": 116, "ETHUSDT": 90, "SOLUSDT": 100})

	s := tr.Stats()
	if s.Total != 4 || s.TP3 != 1 || s.StopLoss != 1 || s.InProgress != 1 || s.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	// (+15 - 5) / 2
	if math.Abs(s.AvgPnL-5) > 1e-9 {
		t.Errorf("expected avg pnl 5, got %.2f", s.AvgPnL)
	}
	if rate, ok := s.WinRate(); !ok || rate != 50 {
		t.Errorf("expected 50%%, got %.1f", rate)
	}
}

func TestTracker_ReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	tr, store := newTracker(t)
	tr.Open(ctx, "BTCUSDT", model.DirectionBuy, 100, plan(95, 105, 110, 115), nil, t0)

	again, err := New(ctx, store, time.Hour, logger.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := again.Records(); len(got) != 1 || got[0].Symbol != "BTCUSDT" {
		t.Errorf("unexpected reloaded records: %+v", got)
	}
}
