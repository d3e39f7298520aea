package platform

import (
	"errors"
	"fmt"

	"groupkeeper-backend/internal/domain"
)

var (
	// ErrCSRFRejected is returned when the retried request is challenged again.
	ErrCSRFRejected = errors.New("platform: csrf challenge repeated after retry")
	// ErrSessionInvalid is returned by CheckSession when the platform rejects
	// the session credential.
	ErrSessionInvalid = errors.New("platform: session credential rejected")
)

// APIError is a non-2xx response from the platform. It matches
// domain.ErrUpstream under errors.Is.
type APIError struct {
	Operation  string
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform: %s: HTTP %d: %s (code %d)", e.Operation, e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("platform: %s: HTTP %d", e.Operation, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return domain.ErrUpstream
}

// errorEnvelope is the platform's error body shape.
type errorEnvelope struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
