package monday

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized = errors.New("authentication failed")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
)

// APIError is returned for non-2xx responses and for GraphQL error payloads.
// Kind, when set, is one of the sentinel errors above.
type APIError struct {
	StatusCode int
	Message    string
	Kind       error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return "API error: " + e.Message
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

func kindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 429:
		return ErrRateLimited
	}
	return nil
}

func kindForCode(code string) error {
	switch {
	case strings.Contains(code, "RateLimit"), strings.Contains(code, "Complexity"):
		return ErrRateLimited
	case strings.Contains(code, "Unauthorized"), strings.Contains(code, "NotAuthenticated"):
		return ErrUnauthorized
	case strings.Contains(code, "NotFound"):
		return ErrNotFound
	}
	return nil
}
