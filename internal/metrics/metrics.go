// Package metrics exposes Prometheus counters for the poll cycle and a small
// /metrics + /healthz server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"SignalSentinel/internal/model"
)

// Metrics holds all Prometheus metrics of the bot. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	SignalsEvaluated *prometheus.CounterVec // labels: signal
	SignalsEmitted   *prometheus.CounterVec // labels: signal
	SignalsVetoed    prometheus.Counter
	TradesOpened     prometheus.Counter
	TradesResolved   *prometheus.CounterVec // labels: status
	FetchErrors      *prometheus.CounterVec // labels: op
	NotifyErrors     prometheus.Counter
	Sentiment        prometheus.Gauge // -1 bearish, 0 neutral, 1 bullish
	CycleDuration    prometheus.Histogram
}

// New registers every metric on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SignalsEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentinel_signals_evaluated_total",
			Help: "Signals produced by the scoring engine (by type)",
		}, []string{"signal"}),
		SignalsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentinel_signals_emitted_total",
			Help: "Signals sent as alerts (by type)",
		}, []string{"signal"}),
		SignalsVetoed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentinel_signals_vetoed_total",
			Help: "Qualifying signals blocked by the sentiment gate",
		}),
		TradesOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentinel_trades_opened_total",
			Help: "Trade records opened",
		}),
		TradesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentinel_trades_resolved_total",
			Help: "Trade records resolved (by outcome)",
		}, []string{"status"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentinel_fetch_errors_total",
			Help: "Market data fetch failures (by operation)",
		}, []string{"op"}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentinel_notify_errors_total",
			Help: "Notifications that could not be delivered",
		}),
		Sentiment: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalsentinel_market_sentiment",
			Help: "Market sentiment (-1=bearish, 0=neutral, 1=bullish)",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalsentinel_check_cycle_duration_seconds",
			Help:    "Duration of one signal check cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SignalsEvaluated,
		m.SignalsEmitted,
		m.SignalsVetoed,
		m.TradesOpened,
		m.TradesResolved,
		m.FetchErrors,
		m.NotifyErrors,
		m.Sentiment,
		m.CycleDuration,
	)
	return m
}

func (m *Metrics) ObserveSignal(t model.SignalType) {
	if m != nil {
		m.SignalsEvaluated.WithLabelValues(string(t)).Inc()
	}
}

func (m *Metrics) ObserveEmitted(t model.SignalType) {
	if m != nil {
		m.SignalsEmitted.WithLabelValues(string(t)).Inc()
	}
}

func (m *Metrics) ObserveVeto() {
	if m != nil {
		m.SignalsVetoed.Inc()
	}
}

func (m *Metrics) ObserveTradeOpened() {
	if m != nil {
		m.TradesOpened.Inc()
	}
}

func (m *Metrics) ObserveTradeResolved(code model.StatusCode) {
	if m != nil {
		m.TradesResolved.WithLabelValues(string(code)).Inc()
	}
}

func (m *Metrics) ObserveFetchError(op string) {
	if m != nil {
		m.FetchErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) ObserveNotifyError() {
	if m != nil {
		m.NotifyErrors.Inc()
	}
}

func (m *Metrics) ObserveCycle(seconds float64) {
	if m != nil {
		m.CycleDuration.Observe(seconds)
	}
}

// SetSentiment maps the bias onto the gauge.
func (m *Metrics) SetSentiment(bias model.Trend) {
	if m == nil {
		return
	}
	switch bias {
	case model.TrendBullish:
		m.Sentiment.Set(1)
	case model.TrendBearish:
		m.Sentiment.Set(-1)
	default:
		m.Sentiment.Set(0)
	}
}
