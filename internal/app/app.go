// Package app wires configuration, storage and services together for the
// agenda binaries and runs the HTTP server with graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/agenda/internal/api"
	"github.com/dmitrijs2005/agenda/internal/config"
	"github.com/dmitrijs2005/agenda/internal/cryptox"
	"github.com/dmitrijs2005/agenda/internal/identity"
	"github.com/dmitrijs2005/agenda/internal/images"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/repositories/repomanager"
	"github.com/dmitrijs2005/agenda/internal/services"
)

var (
	openStore     = repomanager.Open
	newImageStore = func(ctx context.Context, s images.Settings) (images.Store, error) {
		return images.NewS3Store(ctx, s)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	Users    *services.UserService
	Contacts *services.ContactService
	Auth     *services.AuthService
	// Emulator is set when the in-process identity emulator is configured.
	Emulator *identity.EmulatorProvider
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	hasher, err := cryptox.NewHasher(c.PasswordScheme)
	if err != nil {
		return nil, err
	}

	db, rm, err := openStore(ctx, c.Backend, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var offloader *images.Offloader
	if c.ImageOffload {
		store, err := newImageStore(ctx, images.Settings{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("image store init error: %w", err)
		}
		offloader = images.NewOffloader(store)
	}

	app := &App{config: c, logger: logger, db: db}
	app.Users = services.NewUserService(db, rm, hasher, offloader, logger)
	app.Contacts = services.NewContactService(db, rm, app.Users, offloader, logger)

	provider, err := app.newProvider()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.Auth = services.NewAuthService(provider, app.Users, logger)

	return app, nil
}

func (app *App) newProvider() (identity.Provider, error) {
	switch app.config.IdentityProvider {
	case config.IdentityREST:
		return identity.NewRESTProvider(app.config.IdentityEndpoint, app.config.IdentityAPIKey, nil), nil
	case config.IdentityEmulator:
		mailer := identity.LogMailer{Log: app.logger.With("module", "mailer"), BaseURL: app.config.PublicURL}
		p, err := identity.NewEmulatorProvider([]byte(app.config.SecretKey), mailer, app.config.TokenValidityDuration)
		if err != nil {
			return nil, fmt.Errorf("identity emulator init error: %w", err)
		}
		app.Emulator = p
		return p, nil
	}
	return nil, fmt.Errorf("unknown identity provider %q", app.config.IdentityProvider)
}

// DB returns the main store handle.
func (app *App) DB() *sql.DB {
	return app.db
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) newHTTPServer() *api.Server {
	s := api.NewServer(app.config.HTTPAddr, app.logger, app.Users, app.Contacts, app.Auth,
		app.config.AuthMode, app.config.SecretKey, app.config.TokenValidityDuration)
	if app.Emulator != nil {
		s.WithConfirmer(app.Emulator)
	}
	return s
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.newHTTPServer().Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves the HTTP API until ctx is cancelled or a termination signal
// arrives, then closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
