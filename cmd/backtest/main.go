// cmd/backtest replays recent klines through the same scoring engine and risk
// planner the bot uses, and reports how the emitted trades would have ended.
//
// Usage:
//
//	go run ./cmd/backtest --symbol=BTCUSDT --interval=1h --bars=1000
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"SignalSentinel/internal/backtest"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/strategy"
)

func main() {
	symbols := flag.String("symbol", "BTCUSDT", "Comma-separated symbols to replay")
	interval := flag.String("interval", "1h", "Kline interval")
	bars := flag.Int("bars", 1000, "Number of klines to fetch (max 1000)")
	window := flag.Int("window", collector.DefaultKlineLimit, "Bars visible to each snapshot")
	horizon := flag.Duration("horizon", 6*time.Hour, "How long a trade stays open")
	cfgPath := flag.String("config", "configs/config.yaml", "Config file for base URL, proxy and thresholds")
	verbose := flag.Bool("v", false, "List every trade")
	flag.Parse()

	log, err := logger.NewZapLogger("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("load_config_failed", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	engine := strategy.NewEngine()
	engine.BuyThreshold = cfg.Strategy.BuyThreshold
	engine.SellThreshold = cfg.Strategy.SellThreshold
	engine.StrongMultiplier = cfg.Strategy.StrongMultiplier
	engine.MinEmitScore = cfg.Strategy.MinEmitScore

	fetcher := collector.NewBinanceFetcher(cfg.Market.BaseURL, cfg.Proxy)
	btCfg := backtest.Config{
		Window:      *window,
		Interval:    *interval,
		HorizonBars: backtest.HorizonBars(*horizon, *interval),
	}

	for _, symbol := range strings.Split(*symbols, ",") {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		klines, err := fetcher.FetchKlines(ctx, symbol, *interval, *bars)
		if err != nil {
			log.Error("fetch_klines_failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		res := backtest.Run(symbol, klines, engine, btCfg)
		printResult(res, *interval, *verbose)
	}
}

func printResult(res backtest.Result, interval string, verbose bool) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Printf("║  BACKTEST %-26s ║\n", res.Symbol+" "+interval)
	fmt.Println("╠══════════════════════════════════════╣")
	fmt.Printf("║  Bars replayed:     %-16d ║\n", res.Bars)
	fmt.Printf("║  Qualifying signals:%-16d ║\n", res.Signals)
	fmt.Printf("║  Trades:            %-16d ║\n", len(res.Trades))
	fmt.Printf("║  Wins / Losses:     %-16s ║\n", fmt.Sprintf("%d / %d", res.Wins, res.Losses))
	fmt.Printf("║  Still open:        %-16d ║\n", res.Open)
	if rate, ok := res.WinRate(); ok {
		fmt.Printf("║  Win rate:          %-16s ║\n", fmt.Sprintf("%.1f%%", rate))
		fmt.Printf("║  Avg P&L:           %-16s ║\n", fmt.Sprintf("%+.2f%%", res.AvgPnL))
	}
	fmt.Println("╚══════════════════════════════════════╝")

	if !verbose {
		return
	}
	for _, t := range res.Trades {
		fmt.Printf("  %s %-4s entry %.4f -> %s (%s)\n",
			t.Record.EntryTime.Format("2006-01-02 15:04"), t.Record.Direction, t.Record.EntryPrice,
			t.Record.Status.Code(), strings.Join(t.Signal.Labels, ", "))
	}
}
