// Package logging holds the Logger interface shared by services, the HTTP API
// and the CLI, plus its log/slog backend.
package logging

import "context"

// Logger writes leveled records with attributes given as alternating keys
// and values:
//
//	log.Warn(ctx, "ownership migration failed", "migration", id, "error", err)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes to every record of the returned logger.
	With(args ...any) Logger
}
