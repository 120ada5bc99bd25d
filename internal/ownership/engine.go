// Package ownership rewrites the owner of legacy contact records as the
// ownership scheme evolves: contacts without an owner, then contacts owned by
// a username once the user signs in with an email.
//
// Every migration is idempotent and gated by a completion flag kept in the
// metadata store, so a migration's writes happen at most once per flag.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/repositories/contacts"
	"github.com/dmitrijs2005/agenda/internal/repositories/metadata"
	"github.com/dmitrijs2005/agenda/internal/repositories/users"
	"github.com/dmitrijs2005/agenda/internal/session"
	"github.com/hashicorp/go-multierror"
)

// ErrSkipped is returned by an action that could not run yet. The engine
// leaves its flag unset so it is retried on the next run.
var ErrSkipped = errors.New("migration skipped")

// Env is what a migration action may touch.
type Env struct {
	Contacts contacts.Repository
	Users    users.Repository
	Log      logging.Logger
}

type Migration struct {
	ID   int
	Name string
	// FlagKey names the completion flag for the given session.
	FlagKey func(s session.Session) string
	// Applies reports whether the migration is relevant for the session.
	Applies func(s session.Session) bool
	// Run performs the rewrite and returns the number of records touched.
	Run func(ctx context.Context, env Env, s session.Session) (int64, error)
}

type Engine struct {
	env        Env
	flags      metadata.Repository
	migrations []Migration
}

// NewEngine returns an engine over the given migrations, or the built-in
// registry when none are passed.
func NewEngine(c contacts.Repository, u users.Repository, flags metadata.Repository, log logging.Logger, ms ...Migration) *Engine {
	if len(ms) == 0 {
		ms = Registry()
	}
	sorted := append([]Migration(nil), ms...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	return &Engine{
		env:        Env{Contacts: c, Users: u, Log: log.With("module", "ownership")},
		flags:      flags,
		migrations: sorted,
	}
}

// Run applies every pending migration in id order. A failing migration does
// not stop the ones after it; all failures are returned together.
func (e *Engine) Run(ctx context.Context, s session.Session) error {
	var result *multierror.Error

	for _, m := range e.migrations {
		if m.Applies != nil && !m.Applies(s) {
			continue
		}

		key := m.FlagKey(s)
		done, err := e.flags.Get(ctx, key)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%04d %s: read flag: %w", m.ID, m.Name, err))
			continue
		}
		if len(done) > 0 {
			continue
		}

		n, err := m.Run(ctx, e.env, s)
		if errors.Is(err, ErrSkipped) {
			e.env.Log.Debug(ctx, "migration skipped", "id", m.ID, "name", m.Name)
			continue
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%04d %s: %w", m.ID, m.Name, err))
			continue
		}

		if err := e.flags.Set(ctx, key, []byte("1")); err != nil {
			result = multierror.Append(result, fmt.Errorf("%04d %s: write flag: %w", m.ID, m.Name, err))
			continue
		}
		e.env.Log.Info(ctx, "migration applied", "id", m.ID, "name", m.Name, "records", n)
	}

	return result.ErrorOrNil()
}
