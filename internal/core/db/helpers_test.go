package db

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// openTestDB opens a migrated SQLite database in a temp dir.
func openTestDB(t *testing.T) (*sqlx.DB, *Queries) {
	t.Helper()
	conn, err := Open("sqlite://" + filepath.Join(t.TempDir(), "branchkeeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, MigrateUp(conn))
	queries, err := LoadQueries(conn)
	require.NoError(t, err)
	return conn, queries
}
