package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/3025972301/scratch-viwe/internal/config"
)

// New opens (or creates) the embedded SQLite database file. The engine runs
// in its native file-backed mode, so durability is handled per statement by
// SQLite itself rather than by re-exporting the whole database image.
func New(cfg config.DBConfig, logger *slog.Logger) (*bun.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.Path)
	return NewWithDSN(dsn, logger)
}

// NewWithDSN opens a database with a custom DSN (useful for testing).
func NewWithDSN(dsn string, logger *slog.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; serializing all access through one
	// connection avoids SQLITE_BUSY under concurrent handlers.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.AddQueryHook(&queryHook{logger: logger})

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected successfully", "dsn", dsn)
	return db, nil
}

func Close(db *bun.DB) {
	if db != nil {
		db.Close()
	}
}

// RunMigrations creates the schema idempotently at startup. There is no
// separate migration mechanism; tables are created if absent.
func RunMigrations(ctx context.Context, db *bun.DB, models ...interface{}) error {
	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model: %w", err)
		}
	}
	slog.Info("database migrations completed successfully")
	return nil
}

// queryHook logs failed statements with their query text so SQL errors are
// diagnosable from the server log alone.
type queryHook struct {
	logger *slog.Logger
}

func (h *queryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err == nil || errors.Is(event.Err, sql.ErrNoRows) {
		return
	}
	h.logger.ErrorContext(ctx, "query failed",
		"query", event.Query,
		"error", event.Err,
	)
}
