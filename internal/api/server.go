// Package api exposes the agenda services as a JSON HTTP API. Requests to
// contact routes carry an HS256 bearer token whose identifier becomes the
// per-request session.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/agenda/internal/config"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// Confirmer completes email verification from a link token.
type Confirmer interface {
	ConfirmEmail(ctx context.Context, token string) error
}

type Server struct {
	address   string
	authMode  string
	users     *services.UserService
	contacts  *services.ContactService
	auth      *services.AuthService
	confirmer Confirmer
	logger    logging.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewServer(a string, l logging.Logger, us *services.UserService, cs *services.ContactService,
	as *services.AuthService, authMode, secretKey string, tokenTTL time.Duration) *Server {
	return &Server{
		address:   a,
		authMode:  authMode,
		users:     us,
		contacts:  cs,
		auth:      as,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// WithConfirmer enables GET /v1/verification/confirm.
func (s *Server) WithConfirmer(c Confirmer) *Server {
	s.confirmer = c
	return s
}

func (s *Server) providerMode() bool {
	return s.authMode == config.AuthModeProvider
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/users", s.handleRegisterUser).Methods(http.MethodPost)
	v1.HandleFunc("/accounts", s.handleRegisterAccount).Methods(http.MethodPost)
	v1.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	v1.HandleFunc("/verification", s.handleResendVerification).Methods(http.MethodPost)
	v1.HandleFunc("/verification/confirm", s.handleConfirmVerification).Methods(http.MethodGet)

	contacts := v1.PathPrefix("/contacts").Subrouter()
	contacts.Use(s.sessionMiddleware)
	contacts.HandleFunc("", s.handleListContacts).Methods(http.MethodGet)
	contacts.HandleFunc("", s.handleCreateContact).Methods(http.MethodPost)
	contacts.HandleFunc("/groups", s.handleGroupedContacts).Methods(http.MethodGet)
	contacts.HandleFunc("/{id}", s.handleGetContact).Methods(http.MethodGet)
	contacts.HandleFunc("/{id}", s.handleUpdateContact).Methods(http.MethodPut)
	contacts.HandleFunc("/{id}", s.handleDeleteContact).Methods(http.MethodDelete)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
