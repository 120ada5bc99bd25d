package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/agenda/internal/netx"
)

// DefaultEndpoint is the public Identity Toolkit API.
const DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

// RESTProvider is a client for an Identity Toolkit compatible REST API
// (the hosted service or a local auth emulator).
type RESTProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewRESTProvider(endpoint, apiKey string, client *http.Client) *RESTProvider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RESTProvider{endpoint: strings.TrimRight(endpoint, "/"), apiKey: apiKey, client: client}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type oobRequest struct {
	RequestType string `json:"requestType"`
	IDToken     string `json:"idToken"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		Disabled      bool   `json:"disabled"`
	} `json:"users"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *RESTProvider) CreateAccount(ctx context.Context, email, password string) (Account, error) {
	var resp tokenResponse
	if err := p.call(ctx, "signUp", credentialsRequest{email, password, true}, &resp); err != nil {
		return Account{}, err
	}
	return Account{UID: resp.LocalID, Email: resp.Email, IDToken: resp.IDToken}, nil
}

// SignIn authenticates and then looks the account up, since the sign-in
// response does not carry the verification state.
func (p *RESTProvider) SignIn(ctx context.Context, email, password string) (Account, error) {
	var resp tokenResponse
	if err := p.call(ctx, "signInWithPassword", credentialsRequest{email, password, true}, &resp); err != nil {
		return Account{}, err
	}
	return p.Lookup(ctx, resp.IDToken)
}

func (p *RESTProvider) SendEmailVerification(ctx context.Context, idToken string) error {
	return p.call(ctx, "sendOobCode", oobRequest{RequestType: "VERIFY_EMAIL", IDToken: idToken}, nil)
}

func (p *RESTProvider) Lookup(ctx context.Context, idToken string) (Account, error) {
	var resp lookupResponse
	if err := p.call(ctx, "lookup", lookupRequest{IDToken: idToken}, &resp); err != nil {
		return Account{}, err
	}
	if len(resp.Users) == 0 {
		return Account{}, Translate(CodeUserNotFound)
	}
	u := resp.Users[0]
	if u.Disabled {
		return Account{}, Translate(CodeUserDisabled)
	}
	return Account{UID: u.LocalID, Email: u.Email, EmailVerified: u.EmailVerified, IDToken: idToken}, nil
}

// SignOut is local only: id tokens are short-lived and the API has no
// per-token revocation.
func (p *RESTProvider) SignOut(context.Context, string) error {
	return nil
}

func (p *RESTProvider) call(ctx context.Context, method string, in, out any) error {
	u := p.endpoint + "/accounts:" + method + "?key=" + url.QueryEscape(p.apiKey)

	resp, err := netx.PostJSON(ctx, p.client, u, in)
	if err != nil {
		var ee *netx.EncodeError
		if errors.As(err, &ee) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", method, err)
		}
		return Translate(CodeNetworkError)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error.Message == "" {
			if resp.StatusCode >= http.StatusInternalServerError {
				return Translate(CodeInternalError)
			}
			return Translate(fmt.Sprintf("HTTP_%d", resp.StatusCode))
		}
		return Translate(e.Error.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
