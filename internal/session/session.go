// Package session keeps the identifier of the signed-in user in the durable
// key-value store so that it survives restarts.
package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/dmitrijs2005/agenda/internal/repositories/metadata"
)

const (
	usernameKey = "session.current_username"
	emailKey    = "session.current_email"
)

// Session is a snapshot of the signed-in user. Identifier is a normalized
// username or email; the zero value means nobody is signed in.
type Session struct {
	Identifier string
}

func New(identifier string) Session {
	return Session{Identifier: models.NormalizeIdentifier(identifier)}
}

func (s Session) LoggedIn() bool {
	return s.Identifier != ""
}

func (s Session) IsEmail() bool {
	return models.IsEmailIdentifier(s.Identifier)
}

// Store is the single durable session slot. Email identifiers and usernames
// occupy separate keys; the email one wins when both are set.
type Store struct {
	kv metadata.Repository
}

func NewStore(kv metadata.Repository) *Store {
	return &Store{kv: kv}
}

// SetCurrentUser records identifier as the signed-in user, replacing any
// previous one.
func (s *Store) SetCurrentUser(ctx context.Context, identifier string) error {
	sess := New(identifier)
	if !sess.LoggedIn() {
		return fmt.Errorf("empty session identifier")
	}

	set, unset := usernameKey, emailKey
	if sess.IsEmail() {
		set, unset = emailKey, usernameKey
	}
	if err := s.kv.Delete(ctx, unset); err != nil {
		return err
	}
	return s.kv.Set(ctx, set, []byte(sess.Identifier))
}

func (s *Store) Current(ctx context.Context) (Session, error) {
	for _, key := range []string{emailKey, usernameKey} {
		v, err := s.kv.Get(ctx, key)
		if err != nil {
			return Session{}, err
		}
		if len(v) > 0 {
			return Session{Identifier: string(v)}, nil
		}
	}
	return Session{}, nil
}

func (s *Store) IsLoggedIn(ctx context.Context) (bool, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return sess.LoggedIn(), nil
}

// Logout clears both slots.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, usernameKey); err != nil {
		return err
	}
	return s.kv.Delete(ctx, emailKey)
}
