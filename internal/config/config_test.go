package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Market.Timeframe != "1h" || cfg.Market.KlineLimit != 200 {
		t.Errorf("unexpected market defaults: %+v", cfg.Market)
	}
	if cfg.Strategy.BuyThreshold != 5 || cfg.Strategy.StrongMultiplier != 1.5 || cfg.Strategy.MinEmitScore != 6 {
		t.Errorf("unexpected strategy defaults: %+v", cfg.Strategy)
	}
	if cfg.Sentiment.TTL != time.Hour || cfg.Cache.SnapshotTTL != time.Minute {
		t.Errorf("unexpected ttl defaults")
	}
	if cfg.Trades.ReviewHorizon != 6*time.Hour {
		t.Errorf("expected 6h horizon, got %v", cfg.Trades.ReviewHorizon)
	}
	if cfg.Database.Driver != StoreSQLite || cfg.Database.DSN == "" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
market:
  symbols: [ADAUSDT]
  timeframe: 15m
strategy:
  buy_threshold: 7
sentiment:
  ttl: 30m
trades:
  review_horizon: 4h
database:
  driver: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Market.Symbols) != 1 || cfg.Market.Symbols[0] != "ADAUSDT" || cfg.Market.Timeframe != "15m" {
		t.Errorf("unexpected market: %+v", cfg.Market)
	}
	if cfg.Strategy.BuyThreshold != 7 || cfg.Strategy.SellThreshold != 5 {
		t.Errorf("unexpected thresholds: %+v", cfg.Strategy)
	}
	if cfg.Sentiment.TTL != 30*time.Minute || cfg.Trades.ReviewHorizon != 4*time.Hour {
		t.Errorf("durations not parsed")
	}
	if cfg.Database.Driver != StoreJSON || cfg.Database.DSN != "" {
		t.Errorf("json driver should not get a DSN: %+v", cfg.Database)
	}
}

func TestLoad_ZeroSentimentThreshold(t *testing.T) {
	path := writeFile(t, "config.yaml", `
sentiment:
  bullish_pct: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Sentiment.BullishPct != 0 || cfg.Sentiment.BearishPct != -2 {
		t.Errorf("expected thresholds 0/-2, got %v/%v", cfg.Sentiment.BullishPct, cfg.Sentiment.BearishPct)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero bullish threshold must validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", " btcusdt, ethusdt ,,")
	t.Setenv("TIMEFRAME", "4h")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "1")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/signals")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("METRICS_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeFile(t, "config.yaml", "market:\n  timeframe: 1h\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(cfg.Market.Symbols, ",") != "BTCUSDT,ETHUSDT" {
		t.Errorf("unexpected symbols %v", cfg.Market.Symbols)
	}
	if cfg.Market.Timeframe != "4h" {
		t.Errorf("env should override yaml, got %s", cfg.Market.Timeframe)
	}
	if cfg.Database.Driver != StorePostgres || cfg.Redis.DB != 2 || cfg.Metrics.Addr != ":9999" || cfg.Log.Level != "debug" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a non-numeric REDIS_DB")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeFile(t, "config.yaml", "market: [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"no symbols", func(c *Config) { c.Market.Symbols = nil }},
		{"bad timeframe", func(c *Config) { c.Market.Timeframe = "7m" }},
		{"short history", func(c *Config) { c.Market.KlineLimit = 10 }},
		{"multiplier below one", func(c *Config) { c.Strategy.StrongMultiplier = 0.5 }},
		{"inverted sentiment", func(c *Config) { c.Sentiment.BearishPct = 3 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = StorePostgres; c.Database.DSN = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
	path := writeFile(t, ".env", "SIGNALSENTINEL_TEST_KEY=hello\n")
	t.Setenv("SIGNALSENTINEL_TEST_KEY", "")
	os.Unsetenv("SIGNALSENTINEL_TEST_KEY")
	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("SIGNALSENTINEL_TEST_KEY"); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
}
