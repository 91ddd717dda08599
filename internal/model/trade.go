package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusCode is the persisted form of a trade status.
type StatusCode string

const (
	StatusPendingReview StatusCode = "pending_review"
	StatusInProgress    StatusCode = "IN_PROGRESS"
	StatusTakeProfit1   StatusCode = "TAKE_PROFIT_1"
	StatusTakeProfit2   StatusCode = "TAKE_PROFIT_2"
	StatusTakeProfit3   StatusCode = "TAKE_PROFIT_3"
	StatusStopLoss      StatusCode = "STOP_LOSS"
)

// IsTakeProfit reports whether the code is one of the take-profit outcomes.
func (c StatusCode) IsTakeProfit() bool {
	return c == StatusTakeProfit1 || c == StatusTakeProfit2 || c == StatusTakeProfit3
}

// TradeStatus is the closed set of trade lifecycle states:
// Pending, InProgress and Resolved. Only Resolved is terminal.
type TradeStatus interface {
	Code() StatusCode
	Terminal() bool
	tradeStatus()
}

// Pending is the state of a freshly opened trade awaiting its first review.
type Pending struct{}

// InProgress is a reviewed trade that hit no level yet.
type InProgress struct {
	Price  float64
	PnLPct float64
}

// Resolved is a trade that hit its stop-loss or one of its take-profits.
type Resolved struct {
	Outcome   StatusCode
	ExitPrice float64
	PnLPct    float64
}

func (Pending) Code() StatusCode    { return StatusPendingReview }
func (Pending) Terminal() bool      { return false }
func (Pending) tradeStatus()        {}
func (InProgress) Code() StatusCode { return StatusInProgress }
func (InProgress) Terminal() bool   { return false }
func (InProgress) tradeStatus()     {}
func (r Resolved) Code() StatusCode { return r.Outcome }
func (Resolved) Terminal() bool     { return true }
func (Resolved) tradeStatus()       {}

// StatusFields flattens a status into its persisted columns.
func StatusFields(s TradeStatus) (code StatusCode, exitPrice, pnlPct *float64) {
	switch st := s.(type) {
	case InProgress:
		return StatusInProgress, Float(st.Price), Float(st.PnLPct)
	case Resolved:
		return st.Outcome, Float(st.ExitPrice), Float(st.PnLPct)
	default:
		return StatusPendingReview, nil, nil
	}
}

// StatusFromFields rebuilds a status from its persisted columns.
func StatusFromFields(code StatusCode, exitPrice, pnlPct *float64) (TradeStatus, error) {
	val := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	switch code {
	case StatusPendingReview, "":
		return Pending{}, nil
	case StatusInProgress:
		return InProgress{Price: val(exitPrice), PnLPct: val(pnlPct)}, nil
	case StatusTakeProfit1, StatusTakeProfit2, StatusTakeProfit3, StatusStopLoss:
		return Resolved{Outcome: code, ExitPrice: val(exitPrice), PnLPct: val(pnlPct)}, nil
	default:
		return nil, fmt.Errorf("unknown trade status %q", code)
	}
}

// TradeRecord tracks the real-world outcome of one emitted signal.
type TradeRecord struct {
	ID         string
	Symbol     string
	Direction  Direction
	EntryPrice float64
	EntryTime  time.Time
	ReviewAt   time.Time
	StopLoss   *float64
	TP1        *float64
	TP2        *float64
	TP3        *float64
	Indicators []string
	Status     TradeStatus
}

type tradeRecordJSON struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Direction  Direction  `json:"signal_type"`
	EntryPrice float64    `json:"entry_price"`
	EntryTime  time.Time  `json:"entry_time"`
	ReviewAt   time.Time  `json:"review_time"`
	StopLoss   *float64   `json:"sl"`
	TP1        *float64   `json:"tp1"`
	TP2        *float64   `json:"tp2"`
	TP3        *float64   `json:"tp3"`
	Indicators []string   `json:"indicators"`
	Status     StatusCode `json:"status"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	PnLPct     *float64   `json:"pnl_pct,omitempty"`
}

// MarshalJSON flattens the status variant into status/exit_price/pnl_pct.
func (r TradeRecord) MarshalJSON() ([]byte, error) {
	code, exitPrice, pnl := StatusFields(r.Status)
	return json.Marshal(tradeRecordJSON{
		ID:         r.ID,
		Symbol:     r.Symbol,
		Direction:  r.Direction,
		EntryPrice: r.EntryPrice,
		EntryTime:  r.EntryTime,
		ReviewAt:   r.ReviewAt,
		StopLoss:   r.StopLoss,
		TP1:        r.TP1,
		TP2:        r.TP2,
		TP3:        r.TP3,
		Indicators: r.Indicators,
		Status:     code,
		ExitPrice:  exitPrice,
		PnLPct:     pnl,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *TradeRecord) UnmarshalJSON(data []byte) error {
	var raw tradeRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := StatusFromFields(raw.Status, raw.ExitPrice, raw.PnLPct)
	if err != nil {
		return err
	}
	*r = TradeRecord{
		ID:         raw.ID,
		Symbol:     raw.Symbol,
		Direction:  raw.Direction,
		EntryPrice: raw.EntryPrice,
		EntryTime:  raw.EntryTime,
		ReviewAt:   raw.ReviewAt,
		StopLoss:   raw.StopLoss,
		TP1:        raw.TP1,
		TP2:        raw.TP2,
		TP3:        raw.TP3,
		Indicators: raw.Indicators,
		Status:     status,
	}
	return nil
}
