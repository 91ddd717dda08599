package model

import "time"

// Sentiment is the coarse market bias derived from a basket of symbols.
type Sentiment struct {
	Bias      Trend     `json:"sentiment"`
	AvgChange float64   `json:"avg_change"`
	Samples   int       `json:"samples"`
	Method    string    `json:"method"`
	UpdatedAt time.Time `json:"timestamp"`
}
