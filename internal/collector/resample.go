package collector

import (
	"fmt"
	"strconv"
	"time"

	"SignalSentinel/internal/model"
)

// higherIntervals maps a trading interval to the one used for trend
// confirmation. Every target is strictly longer than its source.
var higherIntervals = map[string]string{
	"1m":  "15m",
	"3m":  "15m",
	"5m":  "1h",
	"15m": "1h",
	"30m": "4h",
	"1h":  "4h",
	"2h":  "12h",
	"4h":  "1d",
	"6h":  "1d",
	"8h":  "1d",
	"12h": "3d",
	"1d":  "1w",
	"3d":  "1w",
}

// HigherInterval returns the confirmation interval for interval, or "" when
// there is none (1w and unknown intervals).
func HigherInterval(interval string) string {
	return higherIntervals[interval]
}

// IntervalDuration parses Binance interval strings such as 5m, 1h, 4h, 1d, 1w.
func IntervalDuration(interval string) (time.Duration, error) {
	if len(interval) < 2 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	unit := map[byte]time.Duration{
		'm': time.Minute,
		'h': time.Hour,
		'd': 24 * time.Hour,
		'w': 7 * 24 * time.Hour,
	}[interval[len(interval)-1]]
	if unit == 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	return time.Duration(n) * unit, nil
}

// Resample aggregates bars into buckets of the given width, keyed by
// time.Truncate. Bars must be oldest-first.
func Resample(bars []model.OHLCV, bucket time.Duration) []model.OHLCV {
	if len(bars) == 0 || bucket <= 0 {
		return nil
	}
	var out []model.OHLCV
	var cur model.OHLCV
	var started bool

	for _, b := range bars {
		key := b.Time.Truncate(bucket)
		if !started || !key.Equal(cur.Time) {
			if started {
				out = append(out, cur)
			}
			cur = model.OHLCV{Time: key, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			started = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return append(out, cur)
}
