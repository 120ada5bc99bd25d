// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/agenda/internal/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// NewSQLite returns an in-memory database with the full schema applied.
// The pool is pinned to one connection since every :memory: connection
// is a separate database.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.SQLite)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, migrations.SQLiteDir))
	return db
}
