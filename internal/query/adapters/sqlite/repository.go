// Package sqlite reads events from an embedded SQLite database
// (modernc.org/sqlite, no cgo). Timestamps are stored as unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"site-analytics-service/internal/query/adapters/sqlevents"
	"site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/ports"
)

type Config struct {
	// Path to the database file, or ":memory:".
	Path string
	// BusyTimeout is how long a reader waits on a locked database.
	BusyTimeout time.Duration
	// JournalMode is the SQLite journal mode (WAL, DELETE, ...).
	JournalMode    string
	MaxConnections int
}

func DefaultConfig() Config {
	return Config{
		Path:           "analytics.db",
		BusyTimeout:    5 * time.Second,
		JournalMode:    "WAL",
		MaxConnections: 10,
	}
}

// Open opens the database and makes sure the events table exists.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	def := DefaultConfig()
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = def.BusyTimeout
	}
	if cfg.JournalMode == "" {
		cfg.JournalMode = def.JournalMode
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = def.MaxConnections
	}
	// every connection to :memory: is its own database
	if cfg.Path == ":memory:" {
		cfg.MaxConnections = 1
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(%s)",
		cfg.Path, cfg.BusyTimeout.Milliseconds(), cfg.JournalMode)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Migrate creates the events table and its time index when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	cols := []string{"timestamp_ms INTEGER NOT NULL", "is_view INTEGER NOT NULL DEFAULT 0"}
	for _, c := range sqlevents.Columns() {
		cols = append(cols, c+" TEXT")
	}
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS events (\n\t" + strings.Join(cols, ",\n\t") + "\n)",
		"CREATE INDEX IF NOT EXISTS idx_events_domain_time ON events (domain, timestamp_ms)",
		"CREATE INDEX IF NOT EXISTS idx_events_time ON events (timestamp_ms)",
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ ports.EventSource = (*EventRepository)(nil)

func (r *EventRepository) ScanEvents(ctx context.Context, f ports.ScanFilter, fn func(domain.Event) error) error {
	where := "timestamp_ms BETWEEN ? AND ?"
	args := []any{f.From.UnixMilli(), f.To.UnixMilli()}
	if f.Domain != "" {
		where += " AND domain = ?"
		args = append(args, f.Domain)
	}

	query := fmt.Sprintf(`
SELECT %s
FROM events
WHERE %s
ORDER BY timestamp_ms`, sqlevents.SelectList("timestamp_ms"), where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}

	var ms int64
	return sqlevents.Drain(ctx, rows, &ms, func(e *domain.Event) {
		e.Timestamp = time.UnixMilli(ms).UTC()
	}, fn)
}
