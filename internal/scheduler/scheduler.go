// Package scheduler runs the poll cycle: signal checks, trade reviews and
// sentiment refreshes on cron schedules, plus the chat command handler.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/risk"
	"SignalSentinel/internal/sentiment"
	"SignalSentinel/internal/strategy"
	"SignalSentinel/internal/tracker"
)

// Deps are the collaborators of a Scheduler. Metrics and Health may be nil.
type Deps struct {
	Collector *collector.Collector
	Engine    *strategy.Engine
	Gate      *sentiment.Gate
	Tracker   *tracker.Tracker
	Notifier  notifier.Sender
	Signals   recorder.SignalRecorder
	Metrics   *metrics.Metrics
	Health    *metrics.Health
	Log       logger.Logger
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Deps

	cron    *cron.Cron
	symbols []string
	horizon time.Duration
	now     func() time.Time

	// cycle serialises CheckSignals between cron and chat commands.
	cycle      sync.Mutex
	mu         sync.Mutex
	lastSignal map[string]model.SignalType
}

// NewScheduler creates a new Scheduler over symbols.
func NewScheduler(deps Deps, symbols []string, horizon time.Duration) *Scheduler {
	if deps.Signals == nil {
		deps.Signals = recorder.NewNoopStore()
	}
	return &Scheduler{
		Deps:       deps,
		cron:       cron.New(cron.WithSeconds()),
		symbols:    symbols,
		horizon:    horizon,
		now:        time.Now,
		lastSignal: make(map[string]model.SignalType),
	}
}

// RegisterAll registers the signal check, trade review and sentiment jobs.
func (s *Scheduler) RegisterAll(ctx context.Context, checkCron, reviewCron, sentimentCron string) error {
	if _, err := s.cron.AddFunc(checkCron, func() { s.CheckSignals(ctx) }); err != nil {
		return fmt.Errorf("register check task: %w", err)
	}
	if _, err := s.cron.AddFunc(reviewCron, func() { s.ReviewTrades(ctx) }); err != nil {
		return fmt.Errorf("register review task: %w", err)
	}
	if _, err := s.cron.AddFunc(sentimentCron, func() { s.RefreshSentiment(ctx) }); err != nil {
		return fmt.Errorf("register sentiment task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.Log.Info("scheduler_started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.Log.Info("scheduler_stopped")
}

// evaluation is the outcome of scoring one symbol in a cycle.
type evaluation struct {
	snap   *model.Snapshot
	signal model.Signal
}

// CheckSignals runs one poll cycle: refresh every snapshot, publish the
// market summary, then score, veto, dedupe and emit each symbol's signal.
// A failing symbol is skipped; the cycle itself never fails.
func (s *Scheduler) CheckSignals(ctx context.Context) {
	s.cycle.Lock()
	defer s.cycle.Unlock()

	start := s.now()
	mood := s.Gate.Refresh(ctx, false)
	s.Metrics.SetSentiment(mood.Bias)

	evals := make([]evaluation, 0, len(s.symbols))
	for _, symbol := range s.symbols {
		snap, err := s.Collector.Collect(ctx, symbol, true)
		if err != nil {
			s.Log.Warn("collect_failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		evals = append(evals, evaluation{snap: snap, signal: s.evaluate(ctx, snap)})
	}

	rows := make([]notifier.SummaryRow, len(evals))
	for i, e := range evals {
		rows[i] = notifier.SummaryRow{Snapshot: e.snap, Signal: e.signal}
	}
	if len(rows) > 0 {
		s.send(ctx, notifier.FormatSummary(s.Collector.Interval(), rows, mood, start))
	}

	for _, e := range evals {
		s.emit(ctx, e.snap, e.signal)
	}

	s.Metrics.ObserveCycle(s.now().Sub(start).Seconds())
	if s.Health != nil {
		s.Health.MarkCycle(s.now())
	}
	s.Log.Info("signal_check_done", zap.Int("symbols", len(evals)), zap.Duration("took", s.now().Sub(start)))
}

func (s *Scheduler) evaluate(ctx context.Context, snap *model.Snapshot) model.Signal {
	sig := s.Engine.Evaluate(strategy.Input{
		Snapshot:        snap,
		Price:           snap.Price,
		HigherTrend:     s.Collector.HigherTrend(ctx, snap.Symbol),
		VolumeConfirmed: collector.VolumeConfirmed(snap),
	})
	s.Metrics.ObserveSignal(sig.Type)
	return sig
}

// emit applies the emission rule, the sentiment veto and the per-symbol
// dedupe, then alerts and opens a trade. The risk plan uses the symbol's own
// snapshot.
func (s *Scheduler) emit(ctx context.Context, snap *model.Snapshot, sig model.Signal) {
	if !s.Engine.Qualifies(sig) {
		return
	}
	log := s.Log.With(zap.String("symbol", snap.Symbol), zap.String("signal", string(sig.Type)), zap.Int("score", sig.Score))

	evt := &recorder.SignalEvent{Symbol: snap.Symbol, At: snap.At, Signal: sig, Price: snap.Price, Snapshot: snap}
	if blocked, reason := s.Gate.Check(ctx, sig); blocked {
		s.Metrics.ObserveVeto()
		log.Info("signal_vetoed", zap.String("reason", reason))
		evt.VetoReason = reason
		s.recordSignal(ctx, evt)
		return
	}
	s.recordSignal(ctx, evt)

	s.mu.Lock()
	if s.lastSignal[snap.Symbol] == sig.Type {
		s.mu.Unlock()
		log.Debug("signal_repeated")
		return
	}
	s.lastSignal[snap.Symbol] = sig.Type
	s.mu.Unlock()

	dir := sig.Type.Direction()
	plan := risk.Calculate(snap.Price, dir, snap.ATR, snap.Support, snap.Resistance)
	msg := notifier.FormatSignal(snap, sig, plan, s.now())
	if msg == "" {
		return
	}
	s.send(ctx, msg)
	s.Metrics.ObserveEmitted(sig.Type)

	s.Tracker.Open(ctx, snap.Symbol, dir, snap.Price, plan, sig.Labels, s.now())
	s.Metrics.ObserveTradeOpened()
	log.Info("signal_emitted")
}

// ReviewTrades resolves every due trade and sends the review report.
func (s *Scheduler) ReviewTrades(ctx context.Context) string {
	report := s.Tracker.Review(ctx, s.now(), s.Collector.Fetcher())
	for _, e := range report.Entries {
		if e.Record.Status.Terminal() {
			s.Metrics.ObserveTradeResolved(e.Record.Status.Code())
		}
	}
	msg := notifier.FormatReviewReport(report, s.horizon)
	if msg != "" {
		s.send(ctx, msg)
	}
	return msg
}

// RefreshSentiment forces a sentiment recomputation.
func (s *Scheduler) RefreshSentiment(ctx context.Context) model.Sentiment {
	mood := s.Gate.Refresh(ctx, true)
	s.Metrics.SetSentiment(mood.Bias)
	return mood
}

// RunCheckNow executes one signal check immediately (RUN_ON_START).
func (s *Scheduler) RunCheckNow(ctx context.Context) {
	s.CheckSignals(ctx)
}

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/status":
		return s.status(ctx)
	case "/review":
		if msg := s.ReviewTrades(ctx); msg != "" {
			// Already sent by ReviewTrades.
			return ""
		}
		return "No trades due for review."
	case "/sentiment":
		return notifier.FormatSentiment(s.Gate.Refresh(ctx, false))
	case "/stats":
		return s.stats(ctx)
	default:
		return notifier.HelpText
	}
}

// status reuses cached snapshots when fresh.
func (s *Scheduler) status(ctx context.Context) string {
	var rows []notifier.SummaryRow
	for _, symbol := range s.symbols {
		snap, err := s.Collector.Collect(ctx, symbol, false)
		if err != nil {
			s.Log.Warn("collect_failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		rows = append(rows, notifier.SummaryRow{Snapshot: snap, Signal: s.evaluate(ctx, snap)})
	}
	if len(rows) == 0 {
		return "Market data unavailable."
	}
	return notifier.FormatStatus(rows, s.now())
}

// stats appends per-symbol signal counts when the recorder keeps them.
func (s *Scheduler) stats(ctx context.Context) string {
	msg := notifier.FormatStats(s.Tracker.Stats())
	counter, ok := s.Signals.(recorder.SignalCounter)
	if !ok {
		return msg
	}
	counts := make(map[string]int, len(s.symbols))
	for _, symbol := range s.symbols {
		n, err := counter.CountSignals(ctx, symbol)
		if err != nil {
			s.Log.Warn("count_signals_failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		counts[symbol] = n
	}
	return msg + notifier.FormatSignalCounts(s.symbols, counts)
}

func (s *Scheduler) recordSignal(ctx context.Context, evt *recorder.SignalEvent) {
	if err := s.Signals.RecordSignal(ctx, evt); err != nil {
		s.Log.Error("record_signal_failed", zap.String("symbol", evt.Symbol), zap.Error(err))
	}
}

func (s *Scheduler) send(ctx context.Context, text string) {
	if err := s.Notifier.Send(ctx, text); err != nil {
		s.Metrics.ObserveNotifyError()
		s.Log.Error("send_notification_failed", zap.Error(err))
	}
}
