package recorder

import (
	"context"
	"time"

	"SignalSentinel/internal/model"
)

// TradeStore persists the full trade record set. Save replaces what Load
// would return; record order is preserved.
type TradeStore interface {
	Load(ctx context.Context) ([]model.TradeRecord, error)
	Save(ctx context.Context, records []model.TradeRecord) error
	Close() error
}

// SignalEvent is one qualifying signal as seen by the poll cycle, kept for
// later analysis whether or not it was sent.
type SignalEvent struct {
	Symbol     string
	At         time.Time
	Signal     model.Signal
	Price      float64
	Snapshot   *model.Snapshot
	VetoReason string
}

// SignalRecorder keeps a history of qualifying signals.
type SignalRecorder interface {
	RecordSignal(ctx context.Context, evt *SignalEvent) error
}

// SignalCounter is implemented by recorders that can count stored signals.
type SignalCounter interface {
	CountSignals(ctx context.Context, symbol string) (int, error)
}
