package model

// ExitAction is what to do when a partial take-profit fills.
type ExitAction string

const (
	ActionMoveStopToBreakeven ExitAction = "move_sl_to_breakeven"
	ActionTrailStop           ExitAction = "trail_stop"
	ActionCloseAll            ExitAction = "close_all"
)

// PartialExit is one step of the staged exit schedule.
type PartialExit struct {
	Target  float64    `json:"target"`
	Percent int        `json:"pct"`
	Action  ExitAction `json:"action"`
}

// RiskPlan is the stop-loss / take-profit recommendation for one entry.
type RiskPlan struct {
	Direction  Direction     `json:"type"`
	Entry      float64       `json:"entry"`
	StopLoss   float64       `json:"sl"`
	TP1        float64       `json:"tp1"`
	TP2        float64       `json:"tp2"`
	TP3        float64       `json:"tp3"`
	StopPct    float64       `json:"sl_pct"`
	TP1Pct     float64       `json:"tp1_pct"`
	TP2Pct     float64       `json:"tp2_pct"`
	TP3Pct     float64       `json:"tp3_pct"`
	RiskReward float64       `json:"risk_reward"`
	Partials   []PartialExit `json:"partials"`
}
