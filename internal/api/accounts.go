package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/agenda/internal/auth"
	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/dmitrijs2005/agenda/internal/session"
)

type registerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	Phone        *string `json:"phone,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

func (req registerRequest) user() *models.User {
	return &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Username:     req.Username,
		Password:     req.Password,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	}
}

type credentialsRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	Token      string `json:"token"`
	Identifier string `json:"identifier"`
	ExpiresIn  int64  `json:"expires_in"`
}

type verificationResponse struct {
	Verified bool `json:"verified"`
}

// handleRegisterUser stores a user in the local credential store.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user := req.user()
	id, err := s.users.Register(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleRegisterAccount registers through the identity provider and sends
// the verification email.
func (s *Server) handleRegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user := req.user()
	if err := s.auth.RegisterWithVerification(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

// handleCreateSession exchanges credentials for a bearer token. The token
// identifier is the username in credentials mode and the email in provider
// mode.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	identifier, subject, err := s.signIn(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(identifier)
	if err := s.contacts.Open(r.Context(), sess); err != nil {
		s.logger.Warn(r.Context(), "ownership migrations failed", "owner", sess.Identifier, "error", err)
	}

	token, err := auth.GenerateToken(sess.Identifier, subject, s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:      token,
		Identifier: sess.Identifier,
		ExpiresIn:  int64(s.tokenTTL / time.Second),
	})
}

// signIn returns the session identifier and the subject (user id or provider
// uid) for the credentials.
func (s *Server) signIn(r *http.Request, req credentialsRequest) (string, string, error) {
	ctx := r.Context()

	if s.providerMode() {
		acc, err := s.auth.SignIn(ctx, req.Identifier, req.Password)
		if err != nil {
			return "", "", err
		}
		return acc.Email, acc.UID, nil
	}

	user, err := s.users.GetUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return "", "", common.ErrNotAuthenticated
		}
		return "", "", err
	}
	if !s.users.ValidateCredentials(ctx, user.Username, req.Password) {
		return "", "", common.ErrNotAuthenticated
	}
	return user.Username, user.ID, nil
}

// handleResendVerification signs in without the verification gate and sends
// a new verification email unless the address is already verified.
func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()

	acc, err := s.auth.Authenticate(ctx, req.Identifier, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() {
		if err := s.auth.SignOut(ctx, acc); err != nil {
			s.logger.Warn(ctx, "provider sign-out failed", "error", err)
		}
	}()

	verified, err := s.auth.CheckVerificationStatus(ctx, acc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if verified {
		writeJSON(w, http.StatusOK, verificationResponse{Verified: true})
		return
	}

	if err := s.auth.ResendVerification(ctx, acc); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, verificationResponse{Verified: false})
}

func (s *Server) handleConfirmVerification(w http.ResponseWriter, r *http.Request) {
	if s.confirmer == nil {
		http.NotFound(w, r)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		s.writeError(w, r, common.ErrInvalidToken)
		return
	}
	if err := s.confirmer.ConfirmEmail(r.Context(), token); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verificationResponse{Verified: true})
}
