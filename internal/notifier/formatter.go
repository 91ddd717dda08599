package notifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/tracker"
)

const (
	timeLayout = "2006-01-02 15:04"

	// MaxAlertLabels is how many scoring labels a signal alert lists.
	MaxAlertLabels = 4
	// MaxReviewLabels is how many labels each review line lists.
	MaxReviewLabels = 3
)

// money renders v with thousands separators and the given decimals, e.g. $43,250.50.
func money(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func signalEmoji(t model.SignalType) string {
	switch {
	case t.IsBuy():
		return "🟢"
	case t.IsSell():
		return "🔴"
	default:
		return "⚪"
	}
}

func sentimentEmoji(bias model.Trend) string {
	switch bias {
	case model.TrendBullish:
		return "🟢"
	case model.TrendBearish:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatSignal formats an emitted signal with its risk plan. WAIT yields "".
func FormatSignal(snap *model.Snapshot, sig model.Signal, plan *model.RiskPlan, now time.Time) string {
	if sig.Type == model.SignalWait || snap == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🚨 <b>%s</b> 🚨\n\n", sig.Type.Display()))
	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n", snap.Symbol))
	b.WriteString(fmt.Sprintf("💰 Price: %s\n", money(snap.Price, 2)))
	b.WriteString(fmt.Sprintf("📊 Change 24h: %+.2f%%\n", snap.Change24h))
	b.WriteString(fmt.Sprintf("🏁 Score: %d\n\n", sig.Score))

	var macdHist, kdjJ float64
	if snap.MACD != nil {
		macdHist = snap.MACD.Hist
	}
	if snap.KDJ != nil {
		kdjJ = snap.KDJ.J
	}
	b.WriteString("📉 <b>Indicators:</b>\n")
	b.WriteString(fmt.Sprintf("• RSI: %.1f\n", orZero(snap.RSI)))
	b.WriteString(fmt.Sprintf("• MACD: %+.4f\n", macdHist))
	b.WriteString(fmt.Sprintf("• KDJ: %.1f\n", kdjJ))
	b.WriteString(fmt.Sprintf("• CCI: %.1f\n", orZero(snap.CCI)))

	if len(sig.Labels) > 0 {
		b.WriteString("\n🔔 <b>Signals:</b>\n")
		labels := sig.Labels
		if len(labels) > MaxAlertLabels {
			labels = labels[:MaxAlertLabels]
		}
		for _, l := range labels {
			b.WriteString(fmt.Sprintf("• %s\n", l))
		}
	}

	if plan != nil {
		b.WriteString(fmt.Sprintf("\n🛡️ <b>Stop Loss:</b> %s (%+.1f%%)\n", money(plan.StopLoss, 2), plan.StopPct))
		b.WriteString(fmt.Sprintf("🎯 <b>Take Profit:</b> R:R = 1:%g\n", plan.RiskReward))
		levels := []struct {
			price, pct float64
		}{{plan.TP1, plan.TP1Pct}, {plan.TP2, plan.TP2Pct}, {plan.TP3, plan.TP3Pct}}
		for i, lv := range levels {
			share := 0
			if i < len(plan.Partials) {
				share = plan.Partials[i].Percent
			}
			b.WriteString(fmt.Sprintf("   TP%d: %s (%+.1f%%) - %d%%\n", i+1, money(lv.price, 2), lv.pct, share))
		}
	}

	b.WriteString(fmt.Sprintf("\n⏰ %s", now.Format(timeLayout)))
	return b.String()
}

// SummaryRow is one symbol line of the market summary.
type SummaryRow struct {
	Snapshot *model.Snapshot
	Signal   model.Signal
}

// FormatSummary formats the per-cycle market overview.
func FormatSummary(timeframe string, rows []SummaryRow, sentiment model.Sentiment, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Market Summary</b> - %s\n", timeframe))
	b.WriteString(FormatSentimentLine(sentiment))
	b.WriteString("\n\n")

	for _, row := range rows {
		if row.Snapshot == nil {
			continue
		}
		var kdjJ float64
		if row.Snapshot.KDJ != nil {
			kdjJ = row.Snapshot.KDJ.J
		}
		b.WriteString(fmt.Sprintf("%s %s: %s\n", signalEmoji(row.Signal.Type), row.Snapshot.Symbol, money(row.Snapshot.Price, 0)))
		b.WriteString(fmt.Sprintf("   RSI: %.0f | KDJ: %.0f | %s\n\n", orZero(row.Snapshot.RSI), kdjJ, row.Signal.Type))
	}

	b.WriteString(fmt.Sprintf("⏰ %s", now.Format(timeLayout)))
	return b.String()
}

// FormatSentimentLine renders the one-line sentiment banner.
func FormatSentimentLine(s model.Sentiment) string {
	bias := s.Bias
	if bias == "" {
		bias = model.TrendNeutral
	}
	return fmt.Sprintf("📰 Market Sentiment: %s %s", sentimentEmoji(bias), bias)
}

// FormatSentiment renders the /sentiment reply.
func FormatSentiment(s model.Sentiment) string {
	var b strings.Builder
	b.WriteString(FormatSentimentLine(s))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Avg 24h change: %+.2f%% (%d symbols)\n", s.AvgChange, s.Samples))
	if !s.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s", s.UpdatedAt.Format(timeLayout)))
	}
	return b.String()
}

// FormatReviewReport formats a review pass. An empty pass yields "".
func FormatReviewReport(r *tracker.ReviewReport, horizon time.Duration) string {
	if r == nil || len(r.Entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s Trade Review Report</b>\n\n", horizonLabel(horizon)))

	for _, e := range r.Entries {
		rec := e.Record
		code, _, pnl := model.StatusFields(rec.Status)
		emoji := "⏳"
		switch {
		case code.IsTakeProfit():
			emoji = "✅"
		case code == model.StatusStopLoss:
			emoji = "❌"
		}

		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n", emoji, rec.Symbol, rec.Direction))
		current := "n/a"
		if e.Price != nil {
			current = money(*e.Price, 2)
		}
		b.WriteString(fmt.Sprintf("   Entry: %s | Current: %s\n", money(rec.EntryPrice, 2), current))
		if e.Price == nil {
			b.WriteString("   Result: price unavailable, still pending\n")
		} else {
			b.WriteString(fmt.Sprintf("   Result: %s (%+.2f%%)\n", code, orZero(pnl)))
		}
		if len(rec.Indicators) > 0 {
			labels := rec.Indicators
			if len(labels) > MaxReviewLabels {
				labels = labels[:MaxReviewLabels]
			}
			b.WriteString(fmt.Sprintf("   Signals: %s\n", strings.Join(labels, ", ")))
		}
		b.WriteString(fmt.Sprintf("   Entry Time: %s\n\n", rec.EntryTime.Format(timeLayout)))
	}

	b.WriteString("📈 <b>Summary:</b>\n")
	b.WriteString(fmt.Sprintf("   ✅ Successful: %d\n", r.Successful))
	b.WriteString(fmt.Sprintf("   ❌ Failed: %d\n", r.Failed))
	b.WriteString(fmt.Sprintf("   ⏳ Pending: %d\n", r.Pending))
	if rate, ok := r.WinRate(); ok {
		b.WriteString(fmt.Sprintf("   📊 Win Rate: %.1f%%\n", rate))
	}
	b.WriteString(fmt.Sprintf("\n⏰ %s", r.At.Format(timeLayout)))
	return b.String()
}

func horizonLabel(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		return fmt.Sprintf("%d-Hour", int(d/time.Hour))
	}
	return d.String()
}

// FormatStartup formats the banner sent once when the bot starts.
func FormatStartup(symbols []string, timeframe, schedule string, sentiment model.Sentiment) string {
	var b strings.Builder
	b.WriteString("🤖 <b>SignalSentinel Started</b>\n\n")
	b.WriteString(fmt.Sprintf("📊 Pairs: %s\n", strings.Join(symbols, ", ")))
	b.WriteString(fmt.Sprintf("⏱️ Timeframe: %s\n", timeframe))
	b.WriteString(fmt.Sprintf("🔄 Schedule: %s\n", schedule))
	b.WriteString(FormatSentimentLine(sentiment))
	return b.String()
}

// FormatStats formats the aggregate outcome of all tracked trades.
func FormatStats(s tracker.Stats) string {
	var b strings.Builder
	b.WriteString("📦 <b>Trade Statistics</b>\n\n")
	b.WriteString(fmt.Sprintf("Total: %d\n", s.Total))
	b.WriteString(fmt.Sprintf("Pending review: %d\n", s.Pending))
	b.WriteString(fmt.Sprintf("In progress: %d\n", s.InProgress))
	b.WriteString(fmt.Sprintf("TP1 / TP2 / TP3: %d / %d / %d\n", s.TP1, s.TP2, s.TP3))
	b.WriteString(fmt.Sprintf("Stop loss: %d\n", s.StopLoss))
	if rate, ok := s.WinRate(); ok {
		b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", rate))
		b.WriteString(fmt.Sprintf("Avg P&L: %+.2f%%\n", s.AvgPnL))
	} else {
		b.WriteString("Win rate: n/a\n")
	}
	return b.String()
}

// FormatSignalCounts lists the recorded signal events per symbol, in symbol
// order. Symbols without a count are skipped.
func FormatSignalCounts(symbols []string, counts map[string]int) string {
	var parts []string
	for _, symbol := range symbols {
		if n, ok := counts[symbol]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", symbol, n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("Signals recorded: %s\n", strings.Join(parts, ", "))
}

// FormatStatus formats the /status reply: latest snapshot per symbol.
func FormatStatus(rows []SummaryRow, now time.Time) string {
	var b strings.Builder
	b.WriteString("📋 <b>Status</b>\n\n")
	for _, row := range rows {
		s := row.Snapshot
		if s == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s (%+.2f%%)\n", signalEmoji(row.Signal.Type), s.Symbol, money(s.Price, 2), s.Change24h))
		b.WriteString(fmt.Sprintf("   %s score %d | RSI %.1f | ADX %.1f | Vol %s\n", row.Signal.Type, row.Signal.Score, orZero(s.RSI), orZero(s.ADX), s.VolumeStatus))
		if s.RangePos != nil {
			b.WriteString(fmt.Sprintf("   Range %.0f%% of %s - %s\n", *s.RangePos*100, money(orZero(s.Support), 2), money(orZero(s.Resistance), 2)))
		}
	}
	b.WriteString(fmt.Sprintf("\n⏰ %s", now.Format(timeLayout)))
	return b.String()
}

// HelpText lists the supported commands.
const HelpText = "🤖 <b>Commands</b>\n\n" +
	"/status - latest indicators per pair\n" +
	"/review - review due trades now\n" +
	"/sentiment - current market sentiment\n" +
	"/stats - trade outcome statistics\n" +
	"/help - this message"
