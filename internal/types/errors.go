package types

import (
	"errors"
	"fmt"
)

var (
	ErrDataNotFound  = errors.New("data not found")
	ErrNoSession     = errors.New("no session token configured")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidConfig = errors.New("invalid configuration")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in field %s: %s", e.Field, e.Message)
}

// APIError carries the HTTP status and a body excerpt from a failed
// backend call.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d for %s", e.Status, e.Endpoint)
	}
	return fmt.Sprintf("backend returned status %d for %s: %s", e.Status, e.Endpoint, e.Body)
}

// Unwrap maps auth and not-found statuses onto sentinel errors so
// callers can use errors.Is.
func (e APIError) Unwrap() error {
	switch e.Status {
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrDataNotFound
	}
	return nil
}
