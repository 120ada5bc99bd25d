// Package netx holds small HTTP client helpers.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PostJSON encodes in as JSON and POSTs it to url. The caller closes the
// response body. Transport failures are returned unwrapped so that callers
// can tell them from encoding errors.
func PostJSON(ctx context.Context, client *http.Client, url string, in any) (*http.Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &EncodeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return client.Do(req)
}

// EncodeError reports a request that could not be built.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("build request: %v", e.Err) }

func (e *EncodeError) Unwrap() error { return e.Err }
