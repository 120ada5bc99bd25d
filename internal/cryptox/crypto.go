// Package cryptox hashes and verifies user passwords.
//
// Two encodings are understood: legacy plaintext records and
// "$argon2id$<salt>$<key>" with base64 (raw std) salt and key.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/agenda/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SchemePlain    = "plain"
	SchemeArgon2id = "argon2id"

	argon2Prefix = "$argon2id$"
	saltSize     = 16
)

var b64 = base64.RawStdEncoding

// PasswordHasher turns a password into its stored form and checks a
// candidate against a stored value.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
	// NeedsRehash reports whether stored uses an encoding weaker than the
	// hasher's own.
	NeedsRehash(stored string) bool
}

// NewHasher returns the hasher for scheme.
func NewHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "", SchemePlain:
		return PlainHasher{}, nil
	case SchemeArgon2id:
		return Argon2Hasher{}, nil
	}
	return nil, fmt.Errorf("unknown password scheme %q", scheme)
}

// DeriveKey stretches password with argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// PlainHasher stores passwords as is and compares them exactly.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Verify(stored, password string) bool { return verify(stored, password) }

func (PlainHasher) NeedsRehash(string) bool { return false }

type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey([]byte(password), salt)
	return argon2Prefix + b64.EncodeToString(salt) + "$" + b64.EncodeToString(key), nil
}

func (Argon2Hasher) Verify(stored, password string) bool { return verify(stored, password) }

func (Argon2Hasher) NeedsRehash(stored string) bool {
	return !strings.HasPrefix(stored, argon2Prefix)
}

func verify(stored, password string) bool {
	if !strings.HasPrefix(stored, argon2Prefix) {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
	}

	salt, key, ok := strings.Cut(strings.TrimPrefix(stored, argon2Prefix), "$")
	if !ok {
		return false
	}
	saltBytes, err := b64.DecodeString(salt)
	if err != nil {
		return false
	}
	want, err := b64.DecodeString(key)
	if err != nil {
		return false
	}
	got := DeriveKey([]byte(password), saltBytes)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, want) == 1
}
