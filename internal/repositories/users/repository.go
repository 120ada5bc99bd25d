// Package users persists user records. Identifiers are expected to be
// normalized by the caller; the store enforces their uniqueness.
package users

import (
	"context"

	"github.com/dmitrijs2005/agenda/internal/models"
)

type Repository interface {
	// Create inserts the user. A duplicate username or email yields
	// common.ErrUsernameTaken / common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfileImage(ctx context.Context, id string, image *string) error
	UpdatePassword(ctx context.Context, id string, password string) error
	DeleteAll(ctx context.Context) (int64, error)
}
