package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/session"
)

// AdminOwner receives orphaned contacts adopted while nobody is signed in.
const AdminOwner = "admin"

// Registry returns the built-in migrations.
func Registry() []Migration {
	return []Migration{
		{
			ID:      1,
			Name:    "adopt_orphans",
			FlagKey: func(session.Session) string { return "ownership.0001.adopt_orphans" },
			Run:     adoptOrphans,
		},
		{
			ID:   2,
			Name: "username_to_email",
			FlagKey: func(s session.Session) string {
				return "ownership.0002.username_to_email:" + s.Identifier
			},
			Applies: session.Session.IsEmail,
			Run:     usernameToEmail,
		},
	}
}

func adoptOrphans(ctx context.Context, env Env, s session.Session) (int64, error) {
	owner := s.Identifier
	if owner == "" {
		owner = AdminOwner
	}
	return env.Contacts.AssignOrphans(ctx, owner)
}

func usernameToEmail(ctx context.Context, env Env, s session.Session) (int64, error) {
	user, err := env.Users.GetByEmail(ctx, s.Identifier)
	if errors.Is(err, common.ErrorNotFound) {
		return 0, ErrSkipped
	}
	if err != nil {
		return 0, fmt.Errorf("resolve user: %w", err)
	}
	if user.Username == "" || user.Username == s.Identifier {
		return 0, nil
	}
	return env.Contacts.ReassignOwner(ctx, user.Username, s.Identifier)
}
