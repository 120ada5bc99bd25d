package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/identity"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/models"
)

// AuthService registers and signs in users through the external identity
// provider. It holds no session of its own: the account returned by SignIn
// is passed back in for the follow-up calls.
type AuthService struct {
	provider identity.Provider
	users    *UserService
	log      logging.Logger
}

func NewAuthService(provider identity.Provider, users *UserService, log logging.Logger) *AuthService {
	return &AuthService{provider: provider, users: users, log: log.With("module", "auth")}
}

// RegisterWithVerification creates the provider account, asks the provider
// to send the verification email and stores the profile under the provider
// uid. A failed verification dispatch does not fail the registration.
func (s *AuthService) RegisterWithVerification(ctx context.Context, user *models.User) error {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}
	if !s.users.IsUsernameAvailable(ctx, user.Username) {
		return common.ErrUsernameTaken
	}
	if !s.users.IsEmailAvailable(ctx, user.Email) {
		return common.ErrEmailTaken
	}

	acc, err := s.provider.CreateAccount(ctx, user.Email, user.Password)
	if err != nil {
		return err
	}

	if err := s.provider.SendEmailVerification(ctx, acc.IDToken); err != nil {
		s.log.Warn(ctx, "verification email not sent", "email", acc.Email, "error", err)
	}

	user.ID = acc.UID
	if _, err := s.users.Register(ctx, user); err != nil {
		s.log.Error(ctx, "provider account created without profile", "uid", acc.UID, "error", err)
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

// SignIn authenticates and requires a verified email.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (identity.Account, error) {
	acc, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return identity.Account{}, err
	}
	if !acc.EmailVerified {
		if err := s.provider.SignOut(ctx, acc.IDToken); err != nil {
			s.log.Warn(ctx, "sign-out after verification gate failed", "error", err)
		}
		return identity.Account{}, common.ErrNotVerified
	}
	return acc, nil
}

// Authenticate signs in without the verification gate, for resending the
// verification email.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (identity.Account, error) {
	return s.provider.SignIn(ctx, models.NormalizeIdentifier(email), password)
}

func (s *AuthService) ResendVerification(ctx context.Context, acc identity.Account) error {
	if acc.IDToken == "" {
		return common.ErrNotAuthenticated
	}
	return s.provider.SendEmailVerification(ctx, acc.IDToken)
}

func (s *AuthService) CheckVerificationStatus(ctx context.Context, acc identity.Account) (bool, error) {
	if acc.IDToken == "" {
		return false, common.ErrNotAuthenticated
	}
	current, err := s.provider.Lookup(ctx, acc.IDToken)
	if err != nil {
		return false, err
	}
	return current.EmailVerified, nil
}

func (s *AuthService) SignOut(ctx context.Context, acc identity.Account) error {
	if acc.IDToken == "" {
		return nil
	}
	return s.provider.SignOut(ctx, acc.IDToken)
}
