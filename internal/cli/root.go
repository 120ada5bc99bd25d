// Package cli is the agenda command-line client. Every command opens the
// configured store plus the device-local state database, which keeps the
// signed-in identifier and the identity provider account between runs.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/agenda/internal/app"
	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/config"
	"github.com/dmitrijs2005/agenda/internal/dbx"
	"github.com/dmitrijs2005/agenda/internal/identity"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/repositories/metadata"
	"github.com/dmitrijs2005/agenda/internal/repositories/repomanager"
	"github.com/dmitrijs2005/agenda/internal/session"
	"github.com/spf13/cobra"
)

const accountKey = "provider.account"

// Runtime is what a command works with once the stores are open.
type Runtime struct {
	cfg      *config.Config
	core     *app.App
	state    *sql.DB
	kv       metadata.Repository
	sessions *session.Store
	log      logging.Logger
}

var openCore = app.NewApp

func openRuntime(ctx context.Context, cfg *config.Config, log logging.Logger) (*Runtime, error) {
	core, err := openCore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	state, rm, err := repomanager.Open(ctx, string(dbx.SQLite), cfg.StateDSN)
	if err != nil {
		_ = core.Close()
		return nil, fmt.Errorf("state db init error: %w", err)
	}

	kv := rm.Metadata(state)
	return &Runtime{
		cfg:      cfg,
		core:     core,
		state:    state,
		kv:       kv,
		sessions: session.NewStore(kv),
		log:      log,
	}, nil
}

func (rt *Runtime) Close() error {
	return errors.Join(rt.core.Close(), rt.state.Close())
}

func (rt *Runtime) providerMode() bool {
	return rt.cfg.AuthMode == config.AuthModeProvider
}

// currentSession returns the signed-in session or ErrNotAuthenticated.
func (rt *Runtime) currentSession(ctx context.Context) (session.Session, error) {
	sess, err := rt.sessions.Current(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.LoggedIn() {
		return session.Session{}, common.ErrNotAuthenticated
	}
	return sess, nil
}

func (rt *Runtime) saveAccount(ctx context.Context, acc identity.Account) error {
	data, err := json.Marshal(acc)
	if err != nil {
		return err
	}
	return rt.kv.Set(ctx, accountKey, data)
}

// account returns the stored provider account or ErrNotAuthenticated.
func (rt *Runtime) account(ctx context.Context) (identity.Account, error) {
	data, err := rt.kv.Get(ctx, accountKey)
	if err != nil {
		return identity.Account{}, err
	}
	if data == nil {
		return identity.Account{}, common.ErrNotAuthenticated
	}
	var acc identity.Account
	if err := json.Unmarshal(data, &acc); err != nil {
		return identity.Account{}, fmt.Errorf("stored account: %w", err)
	}
	return acc, nil
}

// NewRootCommand builds the agenda command tree. cfg carries defaults and the
// config file overlay; the persistent flags override it.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	var rt *Runtime

	cmd := &cobra.Command{
		Use:           "agenda",
		Short:         "Agenda - personal contacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logging.New(cmd.ErrOrStderr(), "text", cfg.LogLevel)
			r, err := openRuntime(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			rt = r
			return nil
		},
	}

	config.BindFlags(cmd.PersistentFlags(), cfg)

	get := func() *Runtime { return rt }
	cmd.AddCommand(
		newRegisterCommand(get),
		newLoginCommand(get),
		newLogoutCommand(get),
		newWhoamiCommand(get),
		newVerifyCommand(get),
		newContactsCommand(get),
		newUsersCommand(get),
		newVersionCommand(),
	)

	return cmd
}

type runFunc func(cmd *cobra.Command, args []string, rt *Runtime) error

// withRuntime runs fn with the runtime opened by the root pre-run hook and
// closes it afterwards, whether fn fails or not.
func withRuntime(get func() *Runtime, fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rt := get()
		defer func() {
			err = errors.Join(err, rt.Close())
		}()
		return fn(cmd, args, rt)
	}
}

func inputReader(cmd *cobra.Command) *bufio.Reader {
	return bufio.NewReader(cmd.InOrStdin())
}
