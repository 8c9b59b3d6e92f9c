// Package store is the data store boundary of the dashboard. It exposes a
// small query-builder capability (select, eq, order, single, insert, update,
// delete) over a sqlx connection pool backed by either an embedded SQLite
// file or a hosted Postgres database.
//
// Store errors are classified once, at this boundary, into *Error values.
// Callers receive them unchanged.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/rewards/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseFile is the SQLite file created inside Config.DataDir.
const DatabaseFile = "rewards.db"

// Executor runs statements. *sqlx.DB and *sqlx.Tx satisfy it; tests wrap
// it to observe the statements a caller issues.
type Executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// DB is an open store. It is safe for concurrent use; every From call
// starts an independent query.
type DB struct {
	x       *sqlx.DB
	backend string
	log     *slog.Logger
}

// Option configures Open.
type Option func(*DB)

// WithLogger sets the logger used for statement tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(db *DB) {
		db.log = logger
	}
}

// Open connects to the backend described by cfg. For SQLite the data
// directory is created when missing and foreign keys are enforced.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db := &DB{
		backend: cfg.Backend,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(db)
	}

	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	x, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	if err := x.PingContext(ctx); err != nil {
		x.Close()
		return nil, fmt.Errorf("connecting to %s store: %w", cfg.Backend, err)
	}
	db.x = x

	db.log.Debug("store opened", "backend", cfg.Backend)
	return db, nil
}

// dataSource returns the driver name and DSN for cfg.
func dataSource(cfg types.Config) (string, string, error) {
	switch cfg.Backend {
	case types.BackendPostgres:
		return "postgres", cfg.DSN, nil
	default:
		dataDir := cfg.DataDir
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return "", "", fmt.Errorf("creating data dir: %w", err)
		}
		path := filepath.Join(dataDir, DatabaseFile)
		dsn := "file:" + path +
			"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		return "sqlite", dsn, nil
	}
}

// Migrate creates any missing tables in a single transaction. It is
// idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.x.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting schema transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("applying schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	db.log.Debug("schema applied", "backend", db.backend)
	return nil
}

// From starts a query against table.
func (db *DB) From(table string) *Query {
	return NewQuery(tracingExecutor{Executor: db.x, log: db.log}, table)
}

// Backend returns the backend name the store was opened with.
func (db *DB) Backend() string {
	return db.backend
}

// Ping checks that the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.x.PingContext(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	if db.x == nil {
		return nil
	}
	return db.x.Close()
}

// tracingExecutor logs each statement before running it.
type tracingExecutor struct {
	Executor
	log *slog.Logger
}

func (t tracingExecutor) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	t.log.DebugContext(ctx, "store query", "sql", query)
	return t.Executor.GetContext(ctx, dest, query, args...)
}

func (t tracingExecutor) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	t.log.DebugContext(ctx, "store query", "sql", query)
	return t.Executor.SelectContext(ctx, dest, query, args...)
}

func (t tracingExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.log.DebugContext(ctx, "store exec", "sql", query)
	return t.Executor.ExecContext(ctx, query, args...)
}
