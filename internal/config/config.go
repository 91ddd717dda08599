package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Trade store drivers.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// validTimeframes are the kline intervals accepted by the exchange.
var validTimeframes = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true,
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Market struct {
		BaseURL    string   `yaml:"base_url"`
		Symbols    []string `yaml:"symbols"`
		Timeframe  string   `yaml:"timeframe"`
		KlineLimit int      `yaml:"kline_limit"`
	} `yaml:"market"`
	Strategy struct {
		BuyThreshold     int     `yaml:"buy_threshold"`
		SellThreshold    int     `yaml:"sell_threshold"`
		StrongMultiplier float64 `yaml:"strong_multiplier"`
		MinEmitScore     int     `yaml:"min_emit_score"`
	} `yaml:"strategy"`
	Sentiment struct {
		Basket     []string      `yaml:"basket"`
		TTL        time.Duration `yaml:"ttl"`
		BullishPct float64       `yaml:"bullish_pct"`
		BearishPct float64       `yaml:"bearish_pct"`
	} `yaml:"sentiment"`
	Cache struct {
		SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
	} `yaml:"cache"`
	Schedule struct {
		CheckCron     string `yaml:"check_cron"`
		ReviewCron    string `yaml:"review_cron"`
		SentimentCron string `yaml:"sentiment_cron"`
	} `yaml:"schedule"`
	Trades struct {
		ReviewHorizon time.Duration `yaml:"review_horizon"`
		HistoryFile   string        `yaml:"history_file"`
	} `yaml:"trades"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields defaults.
func Load(path string) (*Config, error) {
	// Thresholds are seeded before decoding because 0 is a valid setting.
	cfg := &Config{}
	cfg.Sentiment.BullishPct = 2
	cfg.Sentiment.BearishPct = -2

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Market.BaseURL = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Market.Symbols = splitList(v)
	}
	if v := os.Getenv("TIMEFRAME"); v != "" {
		c.Market.Timeframe = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CRON_CHECK"); v != "" {
		c.Schedule.CheckCron = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = "https://api.binance.com"
	}
	if len(c.Market.Symbols) == 0 {
		c.Market.Symbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	}
	if c.Market.Timeframe == "" {
		c.Market.Timeframe = "1h"
	}
	if c.Market.KlineLimit == 0 {
		c.Market.KlineLimit = 200
	}
	if c.Strategy.BuyThreshold == 0 {
		c.Strategy.BuyThreshold = 5
	}
	if c.Strategy.SellThreshold == 0 {
		c.Strategy.SellThreshold = 5
	}
	if c.Strategy.StrongMultiplier == 0 {
		c.Strategy.StrongMultiplier = 1.5
	}
	if c.Strategy.MinEmitScore == 0 {
		c.Strategy.MinEmitScore = 6
	}
	if len(c.Sentiment.Basket) == 0 {
		c.Sentiment.Basket = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT"}
	}
	if c.Sentiment.TTL == 0 {
		c.Sentiment.TTL = time.Hour
	}
	if c.Cache.SnapshotTTL == 0 {
		c.Cache.SnapshotTTL = time.Minute
	}
	if c.Schedule.CheckCron == "" {
		c.Schedule.CheckCron = "0 */5 * * * *"
	}
	if c.Schedule.ReviewCron == "" {
		c.Schedule.ReviewCron = "0 */10 * * * *"
	}
	if c.Schedule.SentimentCron == "" {
		c.Schedule.SentimentCron = "0 0 * * * *"
	}
	if c.Trades.ReviewHorizon == 0 {
		c.Trades.ReviewHorizon = 6 * time.Hour
	}
	if c.Trades.HistoryFile == "" {
		c.Trades.HistoryFile = "data/trade_history.json"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = StoreSQLite
	}
	if c.Database.DSN == "" && c.Database.Driver == StoreSQLite {
		c.Database.DSN = "data/signal_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("market.symbols must not be empty")
	}
	if !validTimeframes[c.Market.Timeframe] {
		return fmt.Errorf("market.timeframe %q is not a supported interval", c.Market.Timeframe)
	}
	if c.Market.KlineLimit < 50 || c.Market.KlineLimit > 1000 {
		return fmt.Errorf("market.kline_limit must be within [50, 1000]")
	}
	if c.Strategy.BuyThreshold <= 0 || c.Strategy.SellThreshold <= 0 {
		return fmt.Errorf("strategy thresholds must be positive")
	}
	if c.Strategy.StrongMultiplier < 1 {
		return fmt.Errorf("strategy.strong_multiplier must be >= 1")
	}
	if c.Sentiment.BearishPct >= c.Sentiment.BullishPct {
		return fmt.Errorf("sentiment.bearish_pct must be below sentiment.bullish_pct")
	}
	switch c.Database.Driver {
	case StoreJSON:
	case StoreSQLite, StorePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver %q is not one of json, sqlite, postgres", c.Database.Driver)
	}
	if c.Trades.ReviewHorizon <= 0 {
		return fmt.Errorf("trades.review_horizon must be positive")
	}
	return nil
}
