package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/agenda/internal/common"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

var providerStatus = map[string]int{
	common.ReasonEmailInUse:          http.StatusConflict,
	common.ReasonInvalidEmail:        http.StatusBadRequest,
	common.ReasonWeakPassword:        http.StatusBadRequest,
	common.ReasonUserNotFound:        http.StatusUnauthorized,
	common.ReasonWrongPassword:       http.StatusUnauthorized,
	common.ReasonUserDisabled:        http.StatusForbidden,
	common.ReasonOperationNotAllowed: http.StatusForbidden,
	common.ReasonNetworkError:        http.StatusBadGateway,
	common.ReasonInternalError:       http.StatusBadGateway,
}

// statusFor maps err to an HTTP status and the message shown to the client.
// Unrecognized errors are reported as internal without detail.
func statusFor(err error) (int, errorResponse) {
	var pe *common.ProviderError
	if errors.As(err, &pe) {
		status, ok := providerStatus[pe.Reason]
		if !ok {
			status = http.StatusUnauthorized
		}
		return status, errorResponse{Error: pe.Error(), Reason: pe.Reason}
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, common.ErrUsernameTaken), errors.Is(err, common.ErrEmailTaken):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found"}
	case errors.Is(err, common.ErrNotAuthenticated),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: err.Error()}
	case errors.Is(err, common.ErrNotVerified):
		return http.StatusForbidden, errorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal error"}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "invalid request body: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return common.ErrorValidation }
