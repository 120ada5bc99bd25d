// Package repomanager vends the repository implementations for a storage
// backend and applies its schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/agenda/internal/dbx"
	"github.com/dmitrijs2005/agenda/internal/repositories/contacts"
	"github.com/dmitrijs2005/agenda/internal/repositories/metadata"
	"github.com/dmitrijs2005/agenda/internal/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Open connects to the backend named by backend ("sqlite" or "postgres"),
// runs its migrations and returns the manager for it.
func Open(ctx context.Context, backend, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		db  *sql.DB
		m   RepositoryManager
		err error
	)
	switch dbx.Dialect(backend) {
	case dbx.SQLite:
		db, err = OpenSQLite(dsn)
		m = NewSQLiteRepositoryManager()
	case dbx.Postgres:
		db, err = OpenPostgres(dsn)
		m = NewPostgresRepositoryManager()
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return db, m, nil
}
