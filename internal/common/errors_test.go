package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreError_WrapsDriverErrors(t *testing.T) {
	base := errors.New("permission denied")
	err := NewStoreError("users.get", base)

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "users.get", se.Op)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "store error: users.get: permission denied")
}

func TestNewStoreError_KeepsSentinels(t *testing.T) {
	assert.Nil(t, NewStoreError("x", nil))
	assert.Same(t, ErrorNotFound, NewStoreError("x", ErrorNotFound))

	wrapped := fmt.Errorf("create: %w", ErrUsernameTaken)
	err := NewStoreError("users.create", wrapped)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var se *StoreError
	assert.False(t, errors.As(err, &se))
}

func TestProviderError(t *testing.T) {
	err := fmt.Errorf("sign in: %w", &ProviderError{Reason: ReasonWrongPassword, Code: "INVALID_PASSWORD", Message: "the password is incorrect"})

	assert.True(t, IsProviderReason(err, ReasonWrongPassword))
	assert.False(t, IsProviderReason(err, ReasonUserNotFound))
	assert.Equal(t, "sign in: the password is incorrect", err.Error())

	generic := &ProviderError{Reason: ReasonUnknown, Code: "QUOTA_EXCEEDED"}
	assert.Equal(t, "authentication error: QUOTA_EXCEEDED", generic.Error())
}
