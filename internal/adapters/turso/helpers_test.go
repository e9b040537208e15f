package turso_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/fpstudy/internal/adapters/turso"
	"github.com/emiliopalmerini/fpstudy/internal/infrastructure/config"
	"github.com/emiliopalmerini/fpstudy/internal/migrate"
)

// testDB opens a migrated run database in a fresh temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := turso.NewDB(config.Database{URL: "file:" + filepath.Join(t.TempDir(), "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, migrate.RunAll(context.Background(), db.DB))
	return db.DB
}
