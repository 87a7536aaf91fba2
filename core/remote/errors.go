package remote

import (
	"errors"
	"fmt"
)

// APIError describes a failed request to the ticketing platform.
type APIError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: %s (%s)", e.Status, e.URL)
}

// Transient reports whether the failure is worth retrying. Rate limiting and
// server-side errors are transient; auth and other 4xx responses are not.
func (e *APIError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsPermanent reports whether err is an API error that retrying cannot fix.
// Network-level errors (no APIError in the chain) are treated as transient.
func IsPermanent(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Transient()
	}
	return false
}
