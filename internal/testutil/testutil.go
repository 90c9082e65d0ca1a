package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/repository/postgres"
	"github.com/tradepulse/backend/migrations"
)

// NewTestDB creates an in-memory SQLite database with the full schema applied
func NewTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	raw, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	db := postgres.NewWithDB(raw, "sqlite")
	if err := postgres.Migrate(context.Background(), db, migrations.GetFS()); err != nil {
		t.Fatalf("Failed to apply test schema: %v", err)
	}

	return db
}

// NewTestLogger creates a quiet logger for tests
func NewTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}
