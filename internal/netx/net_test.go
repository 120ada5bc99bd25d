package netx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	t.Run("sends json body", func(t *testing.T) {
		var gotBody map[string]string
		var gotCT, gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = io.WriteString(w, `{"ok":true}`)
		}))
		defer ts.Close()

		resp, err := PostJSON(context.Background(), ts.Client(), ts.URL+"/accounts:lookup?key=k", map[string]string{"idToken": "t"})
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotCT)
		assert.Equal(t, map[string]string{"idToken": "t"}, gotBody)
	})

	t.Run("status is left to the caller", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		resp, err := PostJSON(context.Background(), ts.Client(), ts.URL, struct{}{})
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unencodable body", func(t *testing.T) {
		_, err := PostJSON(context.Background(), http.DefaultClient, "http://127.0.0.1", make(chan int))
		var ee *EncodeError
		require.ErrorAs(t, err, &ee)
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := PostJSON(context.Background(), http.DefaultClient, ts.URL, struct{}{})
		require.Error(t, err)
		var ee *EncodeError
		assert.False(t, errors.As(err, &ee))
	})
}
