// Package models defines the records handled by the agenda data-access layer:
// users, contacts and the grouped contact projection.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/agenda/internal/common"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

// NormalizeIdentifier lower-cases and trims a username or email so that
// uniqueness checks and owner filters are case-insensitive.
func NormalizeIdentifier(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// IsEmailIdentifier reports whether an owner identifier is an email rather
// than a username.
func IsEmailIdentifier(s string) bool {
	return strings.Contains(s, "@")
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// User is a registered account. Password holds whatever the configured
// password scheme produced (plaintext or an encoded hash).
type User struct {
	ID               string    `json:"id,omitempty"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	Password         string    `json:"-"`
	Phone            *string   `json:"phone,omitempty"`
	RegistrationDate time.Time `json:"registration_date"`
	ProfileImage     *string   `json:"profile_image,omitempty"`
}

// Normalize lower-cases the identifiers and drops blank optional fields.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeIdentifier(u.Email)
	u.Username = NormalizeIdentifier(u.Username)
	u.Phone = NonEmpty(u.Phone)
	u.ProfileImage = NonEmpty(u.ProfileImage)
}

// Validate checks the registration rules. The returned error wraps
// common.ErrorValidation.
func (u *User) Validate() error {
	switch {
	case u.Name == "" || u.Email == "" || u.Username == "" || u.Password == "":
		return fmt.Errorf("%w: name, email, username and password are required", common.ErrorValidation)
	case !emailPattern.MatchString(u.Email):
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	case utf8.RuneCountInString(u.Username) < MinUsernameLength:
		return fmt.Errorf("%w: username must be at least %d characters", common.ErrorValidation, MinUsernameLength)
	case utf8.RuneCountInString(u.Password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}
	return nil
}

// NonEmpty maps nil and blank strings to nil.
func NonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
