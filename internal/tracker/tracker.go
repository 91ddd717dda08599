package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
)

// DefaultHorizon is how long a trade runs before its first review.
const DefaultHorizon = 6 * time.Hour

// PriceSource supplies the latest traded price of a symbol.
type PriceSource interface {
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// Tracker owns the trade record set. It is safe for concurrent use; every
// mutation is persisted to the store before the call returns.
type Tracker struct {
	mu      sync.Mutex
	records []model.TradeRecord
	store   recorder.TradeStore
	horizon time.Duration
	log     logger.Logger
	newID   func() string
}

// New loads the existing trade set from store.
func New(ctx context.Context, store recorder.TradeStore, horizon time.Duration, log logger.Logger) (*Tracker, error) {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	records, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	for i := range records {
		if records[i].Status == nil {
			records[i].Status = model.Pending{}
		}
	}
	return &Tracker{
		records: records,
		store:   store,
		horizon: horizon,
		log:     log,
		newID:   uuid.NewString,
	}, nil
}

// Open appends a pending record for a freshly emitted signal. A nil plan
// leaves every level empty.
func (t *Tracker) Open(ctx context.Context, symbol string, dir model.Direction, price float64, plan *model.RiskPlan, labels []string, now time.Time) model.TradeRecord {
	rec := model.TradeRecord{
		ID:         t.newID(),
		Symbol:     symbol,
		Direction:  dir,
		EntryPrice: price,
		EntryTime:  now,
		ReviewAt:   now.Add(t.horizon),
		Indicators: append([]string{}, labels...),
		Status:     model.Pending{},
	}
	if plan != nil {
		rec.StopLoss = model.Float(plan.StopLoss)
		rec.TP1 = model.Float(plan.TP1)
		rec.TP2 = model.Float(plan.TP2)
		rec.TP3 = model.Float(plan.TP3)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, rec)
	t.save(ctx)
	t.log.Info("trade_opened", zap.String("symbol", symbol), zap.String("direction", string(dir)), zap.Float64("price", price))
	return rec
}

// Due returns the non-terminal records whose review time has passed.
func (t *Tracker) Due(now time.Time) []model.TradeRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dueLocked(now)
}

func (t *Tracker) dueLocked(now time.Time) []model.TradeRecord {
	var due []model.TradeRecord
	for _, r := range t.records {
		if !r.Status.Terminal() && !r.ReviewAt.After(now) {
			due = append(due, r)
		}
	}
	return due
}

// Records returns a copy of every record in insertion order.
func (t *Tracker) Records() []model.TradeRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.TradeRecord(nil), t.records...)
}

// ReviewEntry is one reviewed record. Price is nil when no quote was available.
type ReviewEntry struct {
	Record model.TradeRecord
	Price  *float64
}

// ReviewReport summarises one review pass.
type ReviewReport struct {
	At         time.Time
	Entries    []ReviewEntry
	Successful int
	Failed     int
	Pending    int
}

// WinRate is successful / (successful + failed) in percent. ok is false when
// nothing resolved.
func (r *ReviewReport) WinRate() (rate float64, ok bool) {
	return winRate(r.Successful, r.Failed)
}

func winRate(wins, losses int) (float64, bool) {
	if wins+losses == 0 {
		return 0, false
	}
	return float64(wins) / float64(wins+losses) * 100, true
}

// Review resolves every due record against src. Prices are fetched without
// holding the lock; a record that vanished or resolved meanwhile is skipped.
func (t *Tracker) Review(ctx context.Context, now time.Time, src PriceSource) *ReviewReport {
	due := t.Due(now)
	report := &ReviewReport{At: now}
	if len(due) == 0 {
		return report
	}

	prices := make(map[string]*float64, len(due))
	for _, r := range due {
		if _, seen := prices[r.Symbol]; seen {
			continue
		}
		p, err := src.FetchCurrentPrice(ctx, r.Symbol)
		if err != nil {
			t.log.Warn("review_price_unavailable", zap.String("symbol", r.Symbol), zap.Error(err))
			prices[r.Symbol] = nil
			continue
		}
		prices[r.Symbol] = model.Float(p)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range due {
		idx := t.indexLocked(r.ID)
		if idx < 0 || t.records[idx].Status.Terminal() {
			continue
		}
		price := prices[r.Symbol]
		status := Resolve(t.records[idx], price)
		t.records[idx].Status = status

		switch {
		case price == nil:
			report.Pending++
		case status.Code() == model.StatusStopLoss:
			report.Failed++
		case status.Code().IsTakeProfit():
			report.Successful++
		default:
			report.Pending++
		}
		report.Entries = append(report.Entries, ReviewEntry{Record: t.records[idx], Price: price})
	}
	t.save(ctx)
	t.log.Info("trades_reviewed",
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Int("pending", report.Pending))
	return report
}

// Stats aggregates outcomes over the whole record set.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	TP1        int
	TP2        int
	TP3        int
	StopLoss   int
	AvgPnL     float64
}

// Wins is the number of take-profit outcomes.
func (s Stats) Wins() int { return s.TP1 + s.TP2 + s.TP3 }

// WinRate is wins / (wins + stop-losses) in percent.
func (s Stats) WinRate() (float64, bool) { return winRate(s.Wins(), s.StopLoss) }

// Stats counts records by status. AvgPnL averages resolved trades only.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s Stats
	var pnlSum float64
	for _, r := range t.records {
		s.Total++
		switch st := r.Status.(type) {
		case model.InProgress:
			s.InProgress++
		case model.Resolved:
			pnlSum += st.PnLPct
			switch st.Outcome {
			case model.StatusTakeProfit1:
				s.TP1++
			case model.StatusTakeProfit2:
				s.TP2++
			case model.StatusTakeProfit3:
				s.TP3++
			case model.StatusStopLoss:
				s.StopLoss++
			}
		default:
			s.Pending++
		}
	}
	if n := s.Wins() + s.StopLoss; n > 0 {
		s.AvgPnL = pnlSum / float64(n)
	}
	return s
}

func (t *Tracker) indexLocked(id string) int {
	for i := range t.records {
		if t.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) save(ctx context.Context) {
	if err := t.store.Save(ctx, t.records); err != nil {
		t.log.Error("trade_store_save_failed", zap.Error(err))
	}
}
