// Package migrations embeds the goose schema migrations for every supported
// dialect. Each directory is self-contained and numbered independently.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SQLite embed.FS

//go:embed postgres/*.sql
var Postgres embed.FS

// Directories inside the embedded filesystems.
const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
