package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"SignalSentinel/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// SQLStore persists trades and signal history to SQLite or PostgreSQL.
// The schema sticks to types both engines accept.
type SQLStore struct {
	db     *sqlx.DB
	driver string
	mu     sync.Mutex
}

// NewSQLStore opens (or creates) the database and runs migrations.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// WAL lets readers (dashboards, the backtest) run while the bot writes.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id          TEXT PRIMARY KEY,
			seq         BIGINT NOT NULL,
			symbol      TEXT NOT NULL,
			direction   TEXT NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			entry_time  BIGINT NOT NULL,
			review_time BIGINT NOT NULL,
			sl          DOUBLE PRECISION,
			tp1         DOUBLE PRECISION,
			tp2         DOUBLE PRECISION,
			tp3         DOUBLE PRECISION,
			indicators  TEXT NOT NULL,
			status      TEXT NOT NULL,
			exit_price  DOUBLE PRECISION,
			pnl_pct     DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status)`,

		`CREATE TABLE IF NOT EXISTS signal_events (
			id          TEXT PRIMARY KEY,
			ts          BIGINT NOT NULL,
			symbol      TEXT NOT NULL,
			signal_type TEXT NOT NULL,
			score       INTEGER NOT NULL,
			price       DOUBLE PRECISION NOT NULL,
			rsi         DOUBLE PRECISION,
			macd_hist   DOUBLE PRECISION,
			adx         DOUBLE PRECISION,
			atr         DOUBLE PRECISION,
			labels      TEXT NOT NULL,
			veto_reason TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_ts ON signal_events(ts)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

type tradeRow struct {
	ID         string          `db:"id"`
	Seq        int64           `db:"seq"`
	Symbol     string          `db:"symbol"`
	Direction  string          `db:"direction"`
	EntryPrice float64         `db:"entry_price"`
	EntryTime  int64           `db:"entry_time"`
	ReviewTime int64           `db:"review_time"`
	StopLoss   sql.NullFloat64 `db:"sl"`
	TP1        sql.NullFloat64 `db:"tp1"`
	TP2        sql.NullFloat64 `db:"tp2"`
	TP3        sql.NullFloat64 `db:"tp3"`
	Indicators string          `db:"indicators"`
	Status     string          `db:"status"`
	ExitPrice  sql.NullFloat64 `db:"exit_price"`
	PnLPct     sql.NullFloat64 `db:"pnl_pct"`
}

func toRow(seq int, r model.TradeRecord) (tradeRow, error) {
	labels := r.Indicators
	if labels == nil {
		labels = []string{}
	}
	ind, err := json.Marshal(labels)
	if err != nil {
		return tradeRow{}, err
	}
	code, exitPrice, pnl := model.StatusFields(r.Status)
	return tradeRow{
		ID:         r.ID,
		Seq:        int64(seq),
		Symbol:     r.Symbol,
		Direction:  string(r.Direction),
		EntryPrice: r.EntryPrice,
		EntryTime:  r.EntryTime.UnixNano(),
		ReviewTime: r.ReviewAt.UnixNano(),
		StopLoss:   nullable(r.StopLoss),
		TP1:        nullable(r.TP1),
		TP2:        nullable(r.TP2),
		TP3:        nullable(r.TP3),
		Indicators: string(ind),
		Status:     string(code),
		ExitPrice:  nullable(exitPrice),
		PnLPct:     nullable(pnl),
	}, nil
}

func (row tradeRow) record() (model.TradeRecord, error) {
	var labels []string
	if err := json.Unmarshal([]byte(row.Indicators), &labels); err != nil {
		return model.TradeRecord{}, fmt.Errorf("trade %s indicators: %w", row.ID, err)
	}
	status, err := model.StatusFromFields(model.StatusCode(row.Status), pointer(row.ExitPrice), pointer(row.PnLPct))
	if err != nil {
		return model.TradeRecord{}, fmt.Errorf("trade %s: %w", row.ID, err)
	}
	return model.TradeRecord{
		ID:         row.ID,
		Symbol:     row.Symbol,
		Direction:  model.Direction(row.Direction),
		EntryPrice: row.EntryPrice,
		EntryTime:  time.Unix(0, row.EntryTime).UTC(),
		ReviewAt:   time.Unix(0, row.ReviewTime).UTC(),
		StopLoss:   pointer(row.StopLoss),
		TP1:        pointer(row.TP1),
		TP2:        pointer(row.TP2),
		TP3:        pointer(row.TP3),
		Indicators: labels,
		Status:     status,
	}, nil
}

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func pointer(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return model.Float(n.Float64)
}

// Load returns every trade in insertion order.
func (s *SQLStore) Load(ctx context.Context) ([]model.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []tradeRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM trades ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("select trades: %w", err)
	}
	out := make([]model.TradeRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

const upsertTrade = `INSERT INTO trades
	(id, seq, symbol, direction, entry_price, entry_time, review_time,
	 sl, tp1, tp2, tp3, indicators, status, exit_price, pnl_pct)
	VALUES (:id, :seq, :symbol, :direction, :entry_price, :entry_time, :review_time,
	 :sl, :tp1, :tp2, :tp3, :indicators, :status, :exit_price, :pnl_pct)
	ON CONFLICT (id) DO UPDATE SET
	 seq = excluded.seq,
	 status = excluded.status,
	 exit_price = excluded.exit_price,
	 pnl_pct = excluded.pnl_pct,
	 sl = excluded.sl,
	 tp1 = excluded.tp1,
	 tp2 = excluded.tp2,
	 tp3 = excluded.tp3,
	 indicators = excluded.indicators`

// Save upserts every record by id inside one transaction.
func (s *SQLStore) Save(ctx context.Context, records []model.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for i, r := range records {
		row, err := toRow(i, r)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.NamedExecContext(ctx, upsertTrade, row); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert trade %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// RecordSignal appends one qualifying signal to the history table.
func (s *SQLStore) RecordSignal(ctx context.Context, evt *SignalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	labels, err := json.Marshal(evt.Signal.Labels)
	if err != nil {
		return err
	}
	var rsi, hist, adx, atr sql.NullFloat64
	if snap := evt.Snapshot; snap != nil {
		rsi, adx, atr = nullable(snap.RSI), nullable(snap.ADX), nullable(snap.ATR)
		if snap.MACD != nil {
			hist = sql.NullFloat64{Float64: snap.MACD.Hist, Valid: true}
		}
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO signal_events
		(id, ts, symbol, signal_type, score, price, rsi, macd_hist, adx, atr, labels, veto_reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`),
		uuid.NewString(), evt.At.Unix(), evt.Symbol, string(evt.Signal.Type), evt.Signal.Score,
		evt.Price, rsi, hist, adx, atr, string(labels), evt.VetoReason,
	)
	return err
}

// CountSignals returns how many signal events are stored for symbol.
func (s *SQLStore) CountSignals(ctx context.Context, symbol string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM signal_events WHERE symbol = ?`), symbol)
	return n, err
}

// PingContext checks the database connection.
func (s *SQLStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
