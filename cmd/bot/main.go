package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"SignalSentinel/internal/cache"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/sentiment"
	"SignalSentinel/internal/strategy"
	"SignalSentinel/internal/tracker"
)

func main() {
	bootLog := logger.NewNop()
	if err := config.LoadDotEnv(".env"); err != nil {
		fatal(bootLog, "load .env", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(bootLog, "load config", err)
	}
	log, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		fatal(bootLog, "init logger", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(log, "config validation", err)
	}
	log.Info("signalsentinel_starting", zap.Strings("symbols", cfg.Market.Symbols), zap.String("timeframe", cfg.Market.Timeframe))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	health := metrics.NewHealth(30 * time.Minute)

	// Init fetcher
	fetcher := collector.NewBinanceFetcher(cfg.Market.BaseURL, cfg.Proxy)
	log.Info("data_source", zap.String("name", fetcher.Name()), zap.String("base_url", fetcher.BaseURL))

	// Caches: Redis when configured, memory otherwise
	var (
		snapBackend cache.Backend[*model.Snapshot] = cache.NewMemoryBackend[*model.Snapshot]()
		moodBackend cache.Backend[model.Sentiment] = cache.NewMemoryBackend[model.Sentiment]()
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis_unavailable_using_memory", zap.Error(err))
		} else {
			defer rdb.Close()
			rb := cache.NewRedisBackend[*model.Snapshot](rdb, "signalsentinel:snapshot:")
			snapBackend = rb
			moodBackend = cache.NewRedisBackend[model.Sentiment](rdb, "signalsentinel:sentiment:")
			health.AddDependency("redis", rb)
		}
	}
	snapshots := cache.New(snapBackend, cfg.Cache.SnapshotTTL, log)
	moods := cache.New(moodBackend, cfg.Sentiment.TTL, log)

	col := collector.NewCollector(fetcher, cfg.Market.Timeframe, cfg.Market.KlineLimit, snapshots, log, m)

	// Init trade store
	var (
		store   recorder.TradeStore
		signals recorder.SignalRecorder = recorder.NewNoopStore()
	)
	switch cfg.Database.Driver {
	case config.StoreJSON:
		store = recorder.NewJSONStore(cfg.Trades.HistoryFile)
	default:
		ss, err := recorder.NewSQLStore(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			log.Warn("sql_store_unavailable_using_json", zap.String("driver", cfg.Database.Driver), zap.Error(err))
			store = recorder.NewJSONStore(cfg.Trades.HistoryFile)
		} else {
			store, signals = ss, ss
			health.AddDependency("db", ss)
		}
	}
	defer store.Close()

	tr, err := tracker.New(ctx, store, cfg.Trades.ReviewHorizon, log)
	if err != nil {
		fatal(log, "load trade history", err)
	}
	if records := tr.Records(); len(records) > 0 {
		log.Info("trade_history_loaded", zap.Int("records", len(records)), zap.Int("due", len(tr.Due(time.Now()))))
	}

	engine := strategy.NewEngine()
	engine.BuyThreshold = cfg.Strategy.BuyThreshold
	engine.SellThreshold = cfg.Strategy.SellThreshold
	engine.StrongMultiplier = cfg.Strategy.StrongMultiplier
	engine.MinEmitScore = cfg.Strategy.MinEmitScore

	gate := sentiment.NewGate(fetcher, sentiment.Config{
		Basket:     cfg.Sentiment.Basket,
		BullishPct: cfg.Sentiment.BullishPct,
		BearishPct: cfg.Sentiment.BearishPct,
	}, moods, log)

	// Init Telegram notifier; without a token messages go to the log
	var (
		sender notifier.Sender = notifier.LogSender{Log: log}
		tn     *notifier.TelegramNotifier
	)
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = notifier.RetrySender{Notifier: tn, MaxRetries: 3}
	} else {
		log.Warn("telegram_disabled", zap.String("reason", "no bot token"))
	}

	// Init scheduler
	sched := scheduler.NewScheduler(scheduler.Deps{
		Collector: col,
		Engine:    engine,
		Gate:      gate,
		Tracker:   tr,
		Notifier:  sender,
		Signals:   signals,
		Metrics:   m,
		Health:    health,
		Log:       log,
	}, cfg.Market.Symbols, cfg.Trades.ReviewHorizon)
	if err := sched.RegisterAll(ctx, cfg.Schedule.CheckCron, cfg.Schedule.ReviewCron, cfg.Schedule.SentimentCron); err != nil {
		fatal(log, "register cron tasks", err)
	}
	sched.Start()
	defer sched.Stop()

	var srv *metrics.Server
	if cfg.Metrics.Addr != "" {
		srv = metrics.NewServer(cfg.Metrics.Addr, m, health, log)
		srv.Start()
	}

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram_polling_started")
	}

	mood := sched.RefreshSentiment(ctx)
	if err := sender.Send(ctx, notifier.FormatStartup(cfg.Market.Symbols, cfg.Market.Timeframe, cfg.Schedule.CheckCron, mood)); err != nil {
		log.Error("send_startup_failed", zap.Error(err))
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("run_on_start")
		go sched.RunCheckNow(ctx)
	}

	log.Info("signalsentinel_running")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown_signal_received")
	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("metrics_server_stop_failed", zap.Error(err))
		}
		done()
	}
	log.Info("signalsentinel_stopped")
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	os.Stderr.WriteString(msg + ": " + err.Error() + "\n")
	os.Exit(1)
}
