package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/agenda/internal/common"
)

// Contact is an entry of a user's agenda. OwnerIdentifier is the username or
// email of the owner and is used only for filtering; OwnerUserID is set when
// the owner was resolved to a stored user at creation time.
type Contact struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Phone           *string   `json:"phone,omitempty"`
	Address         *string   `json:"address,omitempty"`
	Age             *int      `json:"age,omitempty"`
	Hobbies         *string   `json:"hobbies,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	ProfileImage    *string   `json:"profile_image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	OwnerIdentifier string    `json:"-"`
	OwnerUserID     *string   `json:"-"`
}

// Normalize trims the name and turns blank optional text fields into nil.
func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = NonEmpty(c.Phone)
	c.Address = NonEmpty(c.Address)
	c.Hobbies = NonEmpty(c.Hobbies)
	c.ProfileImage = NonEmpty(c.ProfileImage)
}

func (c *Contact) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: contact name is required", common.ErrorValidation)
	}
	if c.Age != nil && *c.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", common.ErrorValidation)
	}
	if c.Latitude != nil && (*c.Latitude < -90 || *c.Latitude > 90) {
		return fmt.Errorf("%w: latitude out of range", common.ErrorValidation)
	}
	if c.Longitude != nil && (*c.Longitude < -180 || *c.Longitude > 180) {
		return fmt.Errorf("%w: longitude out of range", common.ErrorValidation)
	}
	return nil
}

// CheckDecoded rejects records read from the store that cannot represent a
// contact. It fails closed instead of dropping the row.
func (c *Contact) CheckDecoded() error {
	if c.ID == "" || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: contact %q has no name", common.ErrMalformedRecord, c.ID)
	}
	return nil
}
