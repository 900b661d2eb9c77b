// Package serviceerr defines the error values shared across the client.
package serviceerr

import (
	"errors"
	"fmt"
)

var ErrNoSession = errors.New("no active session")
var ErrNoRefreshToken = errors.New("no refresh token stored")
var ErrSessionExpired = errors.New("session expired")
var ErrNotFound = errors.New("not found")

// APIError is an expected error response from the DevShare API: a non-2xx
// status with a JSON body of the form {"message": "..."}. The message is
// surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an APIError, if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
