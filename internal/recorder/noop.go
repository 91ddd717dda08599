package recorder

import (
	"context"

	"SignalSentinel/internal/model"
)

// NoopStore is used for dry runs and when persistence is disabled.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Load(_ context.Context) ([]model.TradeRecord, error)  { return nil, nil }
func (n *NoopStore) Save(_ context.Context, _ []model.TradeRecord) error  { return nil }
func (n *NoopStore) RecordSignal(_ context.Context, _ *SignalEvent) error { return nil }
func (n *NoopStore) Close() error                                         { return nil }
