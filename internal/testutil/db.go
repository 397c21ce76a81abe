package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/3025972301/scratch-viwe/internal/db"
)

// NewDB opens a fresh in-memory SQLite database and creates tables for the
// given models. Each test gets its own database; the single connection keeps
// the in-memory store alive for the test's lifetime.
func NewDB(t *testing.T, models ...interface{}) *bun.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	database, err := db.NewWithDSN("file::memory:?_pragma=foreign_keys(1)", logger)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), database, models...))
	return database
}
