package driven

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any APIError carrying HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrEncryptionKeyNotSet is returned by SessionStore reads of encrypted values
// when DETECTPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set DETECTPANEL_SECRET_KEY")

// APIError is a non-2xx response from the remote API. Detail is the server's
// plain-text reason, empty when the body carried none.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Reason returns the most useful user-facing text for err: the server detail
// of an APIError when present, otherwise the error message itself.
func Reason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return http.StatusText(apiErr.StatusCode)
	}
	return err.Error()
}
