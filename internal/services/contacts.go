package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/dbx"
	"github.com/dmitrijs2005/agenda/internal/images"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/dmitrijs2005/agenda/internal/ownership"
	"github.com/dmitrijs2005/agenda/internal/repositories/repomanager"
	"github.com/dmitrijs2005/agenda/internal/session"
	"github.com/google/uuid"
)

// ContactService is the owner-scoped contact repository. Every operation
// takes the caller's session; an empty session sees no contacts and may not
// write any.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	users       *UserService
	images      *images.Offloader
	log         logging.Logger
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager, users *UserService, img *images.Offloader, log logging.Logger) *ContactService {
	return &ContactService{
		db:          db,
		repomanager: m,
		users:       users,
		images:      img,
		log:         log.With("module", "contacts"),
	}
}

func (s *ContactService) engine() *ownership.Engine {
	return ownership.NewEngine(
		s.repomanager.Contacts(s.db),
		s.repomanager.Users(s.db),
		s.repomanager.Metadata(s.db),
		s.log,
	)
}

// Open runs the pending ownership migrations for the session. It is called
// right after sign-in; List runs them as well.
func (s *ContactService) Open(ctx context.Context, sess session.Session) error {
	return s.engine().Run(ctx, sess)
}

// List returns the session owner's contacts sorted by name. Migration
// failures are logged and do not prevent the listing.
func (s *ContactService) List(ctx context.Context, sess session.Session) ([]models.Contact, error) {
	if !sess.LoggedIn() {
		return []models.Contact{}, nil
	}

	if err := s.engine().Run(ctx, sess); err != nil {
		s.log.Warn(ctx, "ownership migrations failed", "owner", sess.Identifier, "error", err)
	}

	list, err := s.repomanager.Contacts(s.db).ListByOwner(ctx, sess.Identifier)
	if err != nil {
		return nil, common.NewStoreError("list contacts", err)
	}
	return list, nil
}

// Grouped returns List grouped by the upper-cased initial of the name.
func (s *ContactService) Grouped(ctx context.Context, sess session.Session) ([]models.ContactGroup, error) {
	list, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	return models.GroupByInitial(list), nil
}

func (s *ContactService) Get(ctx context.Context, sess session.Session, id string) (*models.Contact, error) {
	if !sess.LoggedIn() {
		return nil, common.ErrNotAuthenticated
	}
	c, err := s.repomanager.Contacts(s.db).Get(ctx, sess.Identifier, id)
	if err != nil {
		return nil, common.NewStoreError("get contact", err)
	}
	return c, nil
}

// Create stores c for the session owner. The id, creation time and owner
// fields of c are assigned here.
func (s *ContactService) Create(ctx context.Context, sess session.Session, c *models.Contact) error {
	user, err := s.owner(ctx, sess)
	if err != nil {
		return err
	}

	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.OwnerIdentifier = sess.Identifier
	c.OwnerUserID = &user.ID

	if c.ProfileImage, err = s.images.Offload(ctx, imageKey(c.ID), c.ProfileImage); err != nil {
		return fmt.Errorf("store profile image: %w", err)
	}

	if err := s.repomanager.Contacts(s.db).Create(ctx, c); err != nil {
		return common.NewStoreError("create contact", err)
	}
	s.log.Debug(ctx, "contact created", "owner", sess.Identifier, "id", c.ID)
	return nil
}

// Update overwrites the mutable fields of the contact with c.ID. Contacts of
// other owners are reported as not found.
func (s *ContactService) Update(ctx context.Context, sess session.Session, c *models.Contact) error {
	if _, err := s.owner(ctx, sess); err != nil {
		return err
	}

	c.Normalize()
	if c.ID == "" {
		return fmt.Errorf("%w: contact id is required", common.ErrorValidation)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	repo := s.repomanager.Contacts(s.db)
	current, err := repo.Get(ctx, sess.Identifier, c.ID)
	if err != nil {
		return common.NewStoreError("update contact", err)
	}

	key := imageKey(c.ID)
	if c.ProfileImage, err = s.images.Offload(ctx, key, c.ProfileImage); err != nil {
		return fmt.Errorf("store profile image: %w", err)
	}

	if err := repo.Update(ctx, sess.Identifier, c); err != nil {
		return common.NewStoreError("update contact", err)
	}
	c.OwnerIdentifier = sess.Identifier

	if current.ProfileImage != nil && c.ProfileImage == nil {
		if err := s.images.Remove(ctx, key, current.ProfileImage); err != nil {
			s.log.Warn(ctx, "profile image not removed", "id", c.ID, "error", err)
		}
	}
	return nil
}

func (s *ContactService) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.LoggedIn() {
		return common.ErrNotAuthenticated
	}

	var c *models.Contact
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Contacts(tx)

		var err error
		if c, err = repo.Get(ctx, sess.Identifier, id); err != nil {
			return err
		}
		return repo.Delete(ctx, sess.Identifier, id)
	})
	if err != nil {
		return common.NewStoreError("delete contact", err)
	}

	if err := s.images.Remove(ctx, imageKey(id), c.ProfileImage); err != nil {
		s.log.Warn(ctx, "profile image not removed", "id", id, "error", err)
	}
	return nil
}

// ProfileImageURL returns a short-lived URL for an offloaded contact image,
// or "" when the image is absent or stored inline.
func (s *ContactService) ProfileImageURL(ctx context.Context, sess session.Session, id string) (string, error) {
	c, err := s.Get(ctx, sess, id)
	if err != nil {
		return "", err
	}
	if c.ProfileImage == nil {
		return "", nil
	}
	return s.images.URL(ctx, imageKey(c.ID), *c.ProfileImage)
}

// imageKey is the object key of a contact's offloaded profile image.
func imageKey(id string) string {
	return "contacts/" + id
}

// owner resolves the session identifier to a stored user.
func (s *ContactService) owner(ctx context.Context, sess session.Session) (*models.User, error) {
	if !sess.LoggedIn() {
		return nil, common.ErrNotAuthenticated
	}
	return s.users.GetUserByIdentifier(ctx, sess.Identifier)
}
