package identity

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	email, token string
}

func (m *captureMailer) SendVerification(_ context.Context, email, token string) error {
	m.email, m.token = email, token
	return nil
}

func newEmulator(t *testing.T) (*EmulatorProvider, *captureMailer) {
	t.Helper()
	m := &captureMailer{}
	p, err := NewEmulatorProvider([]byte("emulator-secret"), m, time.Hour)
	require.NoError(t, err)
	return p, m
}

func TestEmulator_CreateAndSignIn_VerificationFlow(t *testing.T) {
	p, mailer := newEmulator(t)
	ctx := t.Context()

	acc, err := p.CreateAccount(ctx, "Ana@X.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", acc.Email)
	assert.False(t, acc.EmailVerified)
	require.NotEmpty(t, acc.IDToken)

	require.NoError(t, p.SendEmailVerification(ctx, acc.IDToken))
	assert.Equal(t, "ana@x.com", mailer.email)

	signedIn, err := p.SignIn(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.False(t, signedIn.EmailVerified)

	require.NoError(t, p.ConfirmEmail(ctx, mailer.token))

	looked, err := p.Lookup(ctx, signedIn.IDToken)
	require.NoError(t, err)
	assert.True(t, looked.EmailVerified)
	assert.Equal(t, acc.UID, looked.UID)
	assert.Len(t, acc.UID, 28)
}

func TestEmulator_CreateAccount_Errors(t *testing.T) {
	p, _ := newEmulator(t)
	ctx := t.Context()

	_, err := p.CreateAccount(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, "ANA@x.com", "secret1")
	assert.True(t, common.IsProviderReason(err, common.ReasonEmailInUse), "got %v", err)

	_, err = p.CreateAccount(ctx, "not-an-email", "secret1")
	assert.True(t, common.IsProviderReason(err, common.ReasonInvalidEmail), "got %v", err)

	_, err = p.CreateAccount(ctx, "bob@x.com", "123")
	assert.True(t, common.IsProviderReason(err, common.ReasonWeakPassword), "got %v", err)
}

func TestEmulator_SignIn_Errors(t *testing.T) {
	p, _ := newEmulator(t)
	ctx := t.Context()

	_, err := p.CreateAccount(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "ghost@x.com", "secret1")
	assert.True(t, common.IsProviderReason(err, common.ReasonUserNotFound), "got %v", err)

	_, err = p.SignIn(ctx, "ana@x.com", "wrong-pw")
	assert.True(t, common.IsProviderReason(err, common.ReasonWrongPassword), "got %v", err)

	require.NoError(t, p.SetDisabled("ana@x.com", true))
	_, err = p.SignIn(ctx, "ana@x.com", "secret1")
	assert.True(t, common.IsProviderReason(err, common.ReasonUserDisabled), "got %v", err)
}

func TestEmulator_TokensAreNotInterchangeable(t *testing.T) {
	p, mailer := newEmulator(t)
	ctx := t.Context()

	acc, err := p.CreateAccount(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.SendEmailVerification(ctx, acc.IDToken))

	_, err = p.Lookup(ctx, mailer.token)
	assert.ErrorContains(t, err, CodeInvalidIDToken)

	err = p.ConfirmEmail(ctx, acc.IDToken)
	assert.ErrorContains(t, err, CodeInvalidOobCode)
}
