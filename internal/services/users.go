// Package services holds the account and contact logic of the agenda: the
// credential store, the owner-scoped contact repository and the adapter
// over the external identity provider.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/cryptox"
	"github.com/dmitrijs2005/agenda/internal/images"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/dmitrijs2005/agenda/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// UserService is the credential store: registration with unique usernames
// and emails, credential checks and profile lookups.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	images      *images.Offloader
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher, img *images.Offloader, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		images:      img,
		log:         log.With("module", "users"),
	}
}

// Register validates and stores a new user and returns its id. Username and
// email are lower-cased first; either one already in use fails with
// ErrUsernameTaken or ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, user *models.User) (string, error) {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return "", err
	}

	if !s.IsUsernameAvailable(ctx, user.Username) {
		return "", common.ErrUsernameTaken
	}
	if !s.IsEmailAvailable(ctx, user.Email) {
		return "", common.ErrEmailTaken
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.RegistrationDate.IsZero() {
		user.RegistrationDate = time.Now().UTC()
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	stored := *user
	stored.Password = hash

	img, err := s.images.Offload(ctx, "users/"+user.ID, stored.ProfileImage)
	if err != nil {
		return "", fmt.Errorf("store profile image: %w", err)
	}
	stored.ProfileImage = img

	if err := s.repomanager.Users(s.db).Create(ctx, &stored); err != nil {
		return "", common.NewStoreError("create user", err)
	}
	user.ProfileImage = stored.ProfileImage

	s.log.Info(ctx, "user registered", "id", user.ID, "username", user.Username)
	return user.ID, nil
}

// IsUsernameAvailable reports whether no user has the username. Store
// failures are logged and reported as available; the unique index still
// guards the insert.
func (s *UserService) IsUsernameAvailable(ctx context.Context, username string) bool {
	return s.available(ctx, "username", username, s.repomanager.Users(s.db).GetByUsername)
}

func (s *UserService) IsEmailAvailable(ctx context.Context, email string) bool {
	return s.available(ctx, "email", email, s.repomanager.Users(s.db).GetByEmail)
}

func (s *UserService) available(ctx context.Context, field, value string,
	get func(context.Context, string) (*models.User, error)) bool {
	_, err := get(ctx, models.NormalizeIdentifier(value))
	if errors.Is(err, common.ErrorNotFound) {
		return true
	}
	if err != nil {
		s.log.Warn(ctx, "availability check failed", "field", field, "error", err)
		return true
	}
	return false
}

// ValidateCredentials reports whether the password matches the user's. Any
// lookup failure counts as invalid. With the argon2id scheme, a legacy
// plaintext password is rehashed on the first successful check.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) bool {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, models.NormalizeIdentifier(username))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "credential lookup failed", "error", err)
		}
		return false
	}
	if !s.hasher.Verify(user.Password, password) {
		return false
	}

	if s.hasher.NeedsRehash(user.Password) {
		if hash, err := s.hasher.Hash(password); err == nil {
			if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
				s.log.Warn(ctx, "password rehash failed", "id", user.ID, "error", err)
			}
		}
	}
	return true
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "get user by username", models.NormalizeIdentifier(username), s.repomanager.Users(s.db).GetByUsername)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "get user by email", models.NormalizeIdentifier(email), s.repomanager.Users(s.db).GetByEmail)
}

// GetUserByIdentifier resolves a session identifier: by email when it
// contains '@', by username otherwise.
func (s *UserService) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if models.IsEmailIdentifier(identifier) {
		return s.GetUserByEmail(ctx, identifier)
	}
	return s.GetUserByUsername(ctx, identifier)
}

func (s *UserService) getUser(ctx context.Context, op, value string,
	get func(context.Context, string) (*models.User, error)) (*models.User, error) {
	user, err := get(ctx, value)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, common.NewStoreError(op, err)
	}
	return user, nil
}

// ListAllUsers returns every stored user. Administrative use only.
func (s *UserService) ListAllUsers(ctx context.Context) ([]models.User, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, common.NewStoreError("list users", err)
	}
	return list, nil
}

// UpdateProfileImage sets or, with a nil image, clears the user's picture.
func (s *UserService) UpdateProfileImage(ctx context.Context, username string, image *string) error {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	image, err = s.images.Offload(ctx, "users/"+user.ID, models.NonEmpty(image))
	if err != nil {
		return fmt.Errorf("store profile image: %w", err)
	}
	if err := s.repomanager.Users(s.db).UpdateProfileImage(ctx, user.ID, image); err != nil {
		return common.NewStoreError("update profile image", err)
	}
	return nil
}

// ClearAll deletes every user record. Contacts are left in place.
func (s *UserService) ClearAll(ctx context.Context) error {
	n, err := s.repomanager.Users(s.db).DeleteAll(ctx)
	if err != nil {
		return common.NewStoreError("clear users", err)
	}
	s.log.Warn(ctx, "all users deleted", "count", n)
	return nil
}
