package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRESTServer(t *testing.T, handlers map[string]http.HandlerFunc) *RESTProvider {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc("/v1/accounts:"+path, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") != "test-key" {
				http.Error(w, "missing key", http.StatusForbidden)
				return
			}
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewRESTProvider(srv.URL+"/v1/", "test-key", srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func providerError(message string) map[string]any {
	return map[string]any{"error": map[string]any{"code": 400, "message": message}}
}

func TestREST_CreateAccount(t *testing.T) {
	p := newRESTServer(t, map[string]http.HandlerFunc{
		"signUp": func(w http.ResponseWriter, r *http.Request) {
			var req credentialsRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.True(t, req.ReturnSecureToken)
			writeJSON(w, http.StatusOK, map[string]string{"localId": "uid-1", "email": req.Email, "idToken": "tok"})
		},
	})

	acc, err := p.CreateAccount(t.Context(), "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, Account{UID: "uid-1", Email: "ana@x.com", IDToken: "tok"}, acc)
}

func TestREST_CreateAccount_TranslatesError(t *testing.T) {
	p := newRESTServer(t, map[string]http.HandlerFunc{
		"signUp": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, providerError("EMAIL_EXISTS"))
		},
	})

	_, err := p.CreateAccount(t.Context(), "ana@x.com", "secret1")
	assert.True(t, common.IsProviderReason(err, common.ReasonEmailInUse), "got %v", err)
}

func TestREST_SignIn_LooksUpVerification(t *testing.T) {
	p := newRESTServer(t, map[string]http.HandlerFunc{
		"signInWithPassword": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"localId": "uid-1", "email": "ana@x.com", "idToken": "tok"})
		},
		"lookup": func(w http.ResponseWriter, r *http.Request) {
			var req lookupRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "tok", req.IDToken)
			writeJSON(w, http.StatusOK, map[string]any{"users": []map[string]any{
				{"localId": "uid-1", "email": "ana@x.com", "emailVerified": true},
			}})
		},
	})

	acc, err := p.SignIn(t.Context(), "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.True(t, acc.EmailVerified)
	assert.Equal(t, "tok", acc.IDToken)
}

func TestREST_SignIn_WrongPassword(t *testing.T) {
	p := newRESTServer(t, map[string]http.HandlerFunc{
		"signInWithPassword": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, providerError("INVALID_PASSWORD"))
		},
	})

	_, err := p.SignIn(t.Context(), "ana@x.com", "nope")
	assert.True(t, common.IsProviderReason(err, common.ReasonWrongPassword), "got %v", err)
}

func TestREST_SendEmailVerification(t *testing.T) {
	var got oobRequest
	p := newRESTServer(t, map[string]http.HandlerFunc{
		"sendOobCode": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(w, http.StatusOK, map[string]string{"email": "ana@x.com"})
		},
	})

	require.NoError(t, p.SendEmailVerification(t.Context(), "tok"))
	assert.Equal(t, oobRequest{RequestType: "VERIFY_EMAIL", IDToken: "tok"}, got)
}

func TestREST_Lookup_NoUsers(t *testing.T) {
	p := newRESTServer(t, map[string]http.HandlerFunc{
		"lookup": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{})
		},
	})

	_, err := p.Lookup(t.Context(), "tok")
	assert.True(t, common.IsProviderReason(err, common.ReasonUserNotFound), "got %v", err)
}

func TestREST_ServerErrorWithoutBody(t *testing.T) {
	p := newRESTServer(t, map[string]http.HandlerFunc{
		"lookup": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	})

	_, err := p.Lookup(t.Context(), "tok")
	assert.True(t, common.IsProviderReason(err, common.ReasonInternalError), "got %v", err)
}

func TestREST_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	p := NewRESTProvider(srv.URL, "test-key", nil)

	_, err := p.CreateAccount(t.Context(), "ana@x.com", "secret1")
	assert.True(t, common.IsProviderReason(err, common.ReasonNetworkError), "got %v", err)
}
