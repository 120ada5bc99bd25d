package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/dmitrijs2005/agenda/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(id, username, email string) *models.User {
	return &models.User{
		ID:               id,
		Name:             "Name " + username,
		Email:            email,
		Username:         username,
		Password:         "secret1",
		RegistrationDate: time.UnixMilli(1700000000000).UTC(),
	}
}

func TestSQLite_CreateAndGet(t *testing.T) {
	r := NewSQLiteRepository(testdb.NewSQLite(t))
	ctx := context.Background()

	u := newUser("u1", "alice", "alice@example.com")
	u.Phone = models.Ptr("555")
	require.NoError(t, r.Create(ctx, u))

	byName, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u, byName)

	byEmail, err := r.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Nil(t, byID.ProfileImage)
}

func TestSQLite_GetMissing_ReturnsNotFound(t *testing.T) {
	r := NewSQLiteRepository(testdb.NewSQLite(t))

	_, err := r.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_Create_DuplicateUsername(t *testing.T) {
	r := NewSQLiteRepository(testdb.NewSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("u1", "alice", "a@example.com")))
	err := r.Create(ctx, newUser("u2", "alice", "b@example.com"))
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestSQLite_Create_DuplicateEmail(t *testing.T) {
	r := NewSQLiteRepository(testdb.NewSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("u1", "alice", "a@example.com")))
	err := r.Create(ctx, newUser("u2", "bob", "a@example.com"))
	assert.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestSQLite_ListUpdateAndDeleteAll(t *testing.T) {
	r := NewSQLiteRepository(testdb.NewSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("u2", "bob", "bob@example.com")))
	require.NoError(t, r.Create(ctx, newUser("u1", "alice", "alice@example.com")))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "bob", list[1].Username)

	require.NoError(t, r.UpdateProfileImage(ctx, "u1", models.Ptr("data:image/png;base64,AAAA")))
	require.NoError(t, r.UpdatePassword(ctx, "u1", "$argon2id$x$y"))
	got, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.ProfileImage)
	assert.Equal(t, "data:image/png;base64,AAAA", *got.ProfileImage)
	assert.Equal(t, "$argon2id$x$y", got.Password)

	assert.ErrorIs(t, r.UpdatePassword(ctx, "missing", "x"), common.ErrorNotFound)

	n, err := r.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
