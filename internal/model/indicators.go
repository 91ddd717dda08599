package model

import "time"

// Trend is a three-way directional classification.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// HigherTrend is the direction of the next timeframe up.
type HigherTrend string

const (
	HigherUp      HigherTrend = "UP"
	HigherDown    HigherTrend = "DOWN"
	HigherNeutral HigherTrend = "NEUTRAL"
)

// Divergence classifies price/oscillator disagreement.
type Divergence string

const (
	DivergenceNone    Divergence = "NONE"
	DivergenceBullish Divergence = "BULLISH_DIVERGENCE"
	DivergenceBearish Divergence = "BEARISH_DIVERGENCE"
)

// VolumeStatus compares the last bar volume to its recent average.
type VolumeStatus string

const (
	VolumeLow    VolumeStatus = "low"
	VolumeNormal VolumeStatus = "normal"
	VolumeHigh   VolumeStatus = "high"
)

// MACD holds the line, signal and histogram of the latest bar.
type MACD struct {
	Line   float64 `json:"line"`
	Signal float64 `json:"signal"`
	Hist   float64 `json:"hist"`
}

// Bands holds Bollinger band levels.
type Bands struct {
	Upper float64 `json:"upper"`
	Mid   float64 `json:"mid"`
	Lower float64 `json:"lower"`
}

// Stochastic holds %K and %D.
type Stochastic struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// KDJ holds the K, D and J lines. J is unbounded.
type KDJ struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
	J float64 `json:"j"`
}

// Snapshot is the full indicator bundle for one symbol at one instant.
// A nil field means the series was too short for that indicator and must be
// treated as no contribution, never as zero.
type Snapshot struct {
	Symbol    string    `json:"symbol"`
	At        time.Time `json:"at"`
	Price     float64   `json:"price"`
	Change24h float64   `json:"change_24h"`

	RSI           *float64     `json:"rsi"`
	MACD          *MACD        `json:"macd"`
	Bollinger     *Bands       `json:"bollinger"`
	Stochastic    *Stochastic  `json:"stochastic"`
	ADX           *float64     `json:"adx"`
	ATR           *float64     `json:"atr"`
	Support       *float64     `json:"support"`
	Resistance    *float64     `json:"resistance"`
	RangePos      *float64     `json:"range_position"`
	KDJ           *KDJ         `json:"kdj"`
	VWAP          *float64     `json:"vwap"`
	CCI           *float64     `json:"cci"`
	OBV           *float64     `json:"obv"`
	OBVTrend      Trend        `json:"obv_trend"`
	VolumeProfile *float64     `json:"volume_profile"`
	Divergence    Divergence   `json:"divergence"`
	VolumeStatus  VolumeStatus `json:"volume_status"`
	SMA50         *float64     `json:"sma_50"`
	SMA200        *float64     `json:"sma_200"`
	EMA50         *float64     `json:"ema_50"`
	EMA200        *float64     `json:"ema_200"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
