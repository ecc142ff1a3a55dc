package clients

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the hand-rolled API clients.
var (
	// ErrNoConnection indicates the service could not be reached at all.
	ErrNoConnection = errors.New("failed to connect")
	// ErrUnauthorized indicates rejected credentials or API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrNotReady indicates the service answered but is still starting up.
	ErrNotReady = errors.New("service not ready")
)

// APIError is a non-2xx answer from a service API.
type APIError struct {
	App        string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error: status %d", e.App, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: status %d: %s", e.App, e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// Snippet trims an error response body down to something loggable. Services
// behind proxies answer with whole HTML pages.
func Snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
