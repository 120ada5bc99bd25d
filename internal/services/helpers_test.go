package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/agenda/internal/cryptox"
	"github.com/dmitrijs2005/agenda/internal/images"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/dmitrijs2005/agenda/internal/repositories/repomanager"
	"github.com/dmitrijs2005/agenda/internal/testdb"
	"github.com/stretchr/testify/require"
)

type env struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	users    *UserService
	contacts *ContactService
}

func newEnv(t *testing.T, hasher cryptox.PasswordHasher, img *images.Offloader) *env {
	t.Helper()
	db := testdb.NewSQLite(t)
	rm := repomanager.NewSQLiteRepositoryManager()
	log := logging.Discard()
	users := NewUserService(db, rm, hasher, img, log)
	return &env{
		db:       db,
		rm:       rm,
		users:    users,
		contacts: NewContactService(db, rm, users, img, log),
	}
}

func newPlainEnv(t *testing.T) *env {
	t.Helper()
	return newEnv(t, cryptox.PlainHasher{}, nil)
}

func (e *env) register(t *testing.T, username, email string) string {
	t.Helper()
	id, err := e.users.Register(context.Background(), &models.User{
		Name: "User " + username, Email: email, Username: username, Password: "secret1",
	})
	require.NoError(t, err)
	return id
}

type memImages struct {
	objects map[string][]byte
	deleted []string
}

func newMemImages() *memImages {
	return &memImages{objects: map[string][]byte{}}
}

func (m *memImages) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.objects[key] = data
	return m.Ref(key), nil
}

func (m *memImages) Ref(key string) string { return "s3://test/" + key }

func (m *memImages) Delete(_ context.Context, ref string) error {
	m.deleted = append(m.deleted, ref)
	return nil
}

func (m *memImages) PresignGet(_ context.Context, ref string) (string, error) {
	return "https://signed.example/" + ref[len("s3://"):], nil
}
