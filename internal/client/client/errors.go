package client

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")
	ErrServer       = errors.New("server error")

	// ErrSuperseded means the credential was revoked while a login or
	// registration was in flight; the issued token was discarded.
	ErrSuperseded = errors.New("session changed during request")
)

// ValidationError is a client-side input problem detected before sending.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("field '%s' %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ServerError is the single shape every failed call is rewritten into.
//
// Status is 0 when no response was received. Message is the server's
// "message" field when present, otherwise a description of the failure.
// Kind is one of ErrUnauthorized, ErrUnavailable or ErrServer; Err holds
// the underlying transport error, if any.
type ServerError struct {
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *ServerError) Error() string { return e.Message }

func (e *ServerError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsAuthError reports whether err came from a 401 response.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
