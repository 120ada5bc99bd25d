// Package identity talks to the external identity provider that owns email
// and password accounts for provider-mode registration. Failures are
// reported as *common.ProviderError with a normalized reason.
package identity

import "context"

// Account is a provider account as seen after sign-up or sign-in. IDToken
// authorizes follow-up calls (verification dispatch, lookup).
type Account struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	IDToken       string `json:"id_token,omitempty"`
}

type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (Account, error)
	SignIn(ctx context.Context, email, password string) (Account, error)
	SendEmailVerification(ctx context.Context, idToken string) error
	// Lookup returns the current state of the account behind idToken.
	Lookup(ctx context.Context, idToken string) (Account, error)
	SignOut(ctx context.Context, idToken string) error
}
