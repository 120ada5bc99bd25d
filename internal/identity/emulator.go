package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/cryptox"
	"github.com/dmitrijs2005/agenda/internal/logging"
	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const (
	accountsTable = "accounts"
	idIndex       = "id"
	emailIndex    = "email"

	audienceID     = "id_token"
	audienceVerify = "verify_email"

	// 28 hex characters, the length of provider-issued local ids.
	uidSize = 14
)

// Mailer delivers verification tokens to account owners.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
}

// LogMailer writes verification links to the log instead of sending mail.
type LogMailer struct {
	Log     logging.Logger
	BaseURL string
}

func (m LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.Log.Info(ctx, "verification link", "email", email, "link", m.BaseURL+"/v1/verification/confirm?token="+token)
	return nil
}

type emulatedAccount struct {
	UID      string
	Email    string
	Password string
	Verified bool
	Disabled bool
}

func accountsSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			accountsTable: {
				Name: accountsTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "UID"},
					},
					emailIndex: {
						Name:    emailIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true},
					},
				},
			},
		},
	}
}

// EmulatorProvider is an in-process identity provider for development and
// tests. Accounts live in memory; id and verification tokens are HS256 JWTs.
type EmulatorProvider struct {
	db       *memdb.MemDB
	secret   []byte
	hasher   cryptox.PasswordHasher
	mailer   Mailer
	tokenTTL time.Duration
}

func NewEmulatorProvider(secret []byte, mailer Mailer, tokenTTL time.Duration) (*EmulatorProvider, error) {
	db, err := memdb.NewMemDB(accountsSchema())
	if err != nil {
		return nil, fmt.Errorf("identity emulator: %w", err)
	}
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &EmulatorProvider{
		db:       db,
		secret:   secret,
		hasher:   cryptox.Argon2Hasher{},
		mailer:   mailer,
		tokenTTL: tokenTTL,
	}, nil
}

func (p *EmulatorProvider) CreateAccount(ctx context.Context, email, password string) (Account, error) {
	email = models.NormalizeIdentifier(email)
	if !models.IsValidEmail(email) {
		return Account{}, Translate(CodeInvalidEmail)
	}
	if len(password) < models.MinPasswordLength {
		return Account{}, Translate(CodeWeakPassword)
	}
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return Account{}, Translate(CodeInternalError)
	}

	txn := p.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(accountsTable, emailIndex, email)
	if err != nil {
		return Account{}, Translate(CodeInternalError)
	}
	if existing != nil {
		return Account{}, Translate(CodeEmailExists)
	}

	uid, err := common.MakeRandHexString(uidSize)
	if err != nil {
		return Account{}, Translate(CodeInternalError)
	}
	acc := &emulatedAccount{UID: uid, Email: email, Password: hash}
	if err := txn.Insert(accountsTable, acc); err != nil {
		return Account{}, Translate(CodeInternalError)
	}
	txn.Commit()

	return p.account(acc)
}

func (p *EmulatorProvider) SignIn(ctx context.Context, email, password string) (Account, error) {
	acc, err := p.byEmail(email)
	if err != nil {
		return Account{}, err
	}
	if acc.Disabled {
		return Account{}, Translate(CodeUserDisabled)
	}
	if !p.hasher.Verify(acc.Password, password) {
		return Account{}, Translate(CodeInvalidPassword)
	}
	return p.account(acc)
}

func (p *EmulatorProvider) SendEmailVerification(ctx context.Context, idToken string) error {
	acc, err := p.byToken(idToken, audienceID)
	if err != nil {
		return err
	}
	token, err := p.sign(acc.UID, audienceVerify, 24*time.Hour)
	if err != nil {
		return Translate(CodeInternalError)
	}
	if p.mailer == nil {
		return Translate(CodeOperationNotAllowed)
	}
	return p.mailer.SendVerification(ctx, acc.Email, token)
}

func (p *EmulatorProvider) Lookup(ctx context.Context, idToken string) (Account, error) {
	acc, err := p.byToken(idToken, audienceID)
	if err != nil {
		return Account{}, err
	}
	if acc.Disabled {
		return Account{}, Translate(CodeUserDisabled)
	}
	out, err := p.account(acc)
	if err != nil {
		return Account{}, err
	}
	out.IDToken = idToken
	return out, nil
}

func (p *EmulatorProvider) SignOut(context.Context, string) error {
	return nil
}

// ConfirmEmail marks the account behind a verification token as verified.
func (p *EmulatorProvider) ConfirmEmail(ctx context.Context, token string) error {
	acc, err := p.byToken(token, audienceVerify)
	if err != nil {
		return err
	}
	return p.update(acc.UID, func(a *emulatedAccount) { a.Verified = true })
}

// SetDisabled enables or disables the account with the given email.
func (p *EmulatorProvider) SetDisabled(email string, disabled bool) error {
	acc, err := p.byEmail(email)
	if err != nil {
		return err
	}
	return p.update(acc.UID, func(a *emulatedAccount) { a.Disabled = disabled })
}

func (p *EmulatorProvider) update(uid string, fn func(*emulatedAccount)) error {
	txn := p.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(accountsTable, idIndex, uid)
	if err != nil {
		return Translate(CodeInternalError)
	}
	if raw == nil {
		return Translate(CodeUserNotFound)
	}
	// stored objects are shared with readers and must not be mutated
	updated := *raw.(*emulatedAccount)
	fn(&updated)
	if err := txn.Insert(accountsTable, &updated); err != nil {
		return Translate(CodeInternalError)
	}
	txn.Commit()
	return nil
}

func (p *EmulatorProvider) byEmail(email string) (*emulatedAccount, error) {
	txn := p.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(accountsTable, emailIndex, models.NormalizeIdentifier(email))
	if err != nil {
		return nil, Translate(CodeInternalError)
	}
	if raw == nil {
		return nil, Translate(CodeEmailNotFound)
	}
	return raw.(*emulatedAccount), nil
}

func (p *EmulatorProvider) byToken(token, audience string) (*emulatedAccount, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithAudience(audience), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if audience == audienceVerify {
			return nil, Translate(CodeInvalidOobCode)
		}
		return nil, Translate(CodeInvalidIDToken)
	}

	txn := p.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(accountsTable, idIndex, claims.Subject)
	if err != nil {
		return nil, Translate(CodeInternalError)
	}
	if raw == nil {
		return nil, Translate(CodeUserNotFound)
	}
	return raw.(*emulatedAccount), nil
}

func (p *EmulatorProvider) account(acc *emulatedAccount) (Account, error) {
	token, err := p.sign(acc.UID, audienceID, p.tokenTTL)
	if err != nil {
		return Account{}, Translate(CodeInternalError)
	}
	return Account{UID: acc.UID, Email: acc.Email, EmailVerified: acc.Verified, IDToken: token}, nil
}

func (p *EmulatorProvider) sign(uid, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uid,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}).SignedString(p.secret)
}

var (
	_ Provider = (*EmulatorProvider)(nil)
	_ Provider = (*RESTProvider)(nil)
)
