// Package contacts persists contact records. Every read and write except the
// ownership rewrites is scoped by the owner identifier.
package contacts

import (
	"context"

	"github.com/dmitrijs2005/agenda/internal/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Contact) error
	Get(ctx context.Context, owner, id string) (*models.Contact, error)
	// ListByOwner returns the owner's contacts ordered by name.
	ListByOwner(ctx context.Context, owner string) ([]models.Contact, error)
	Update(ctx context.Context, owner string, c *models.Contact) error
	Delete(ctx context.Context, owner, id string) error

	// AssignOrphans gives every contact without an owner to owner.
	AssignOrphans(ctx context.Context, owner string) (int64, error)
	// ReassignOwner moves contacts owned by from (compared
	// case-insensitively) to to.
	ReassignOwner(ctx context.Context, from, to string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
