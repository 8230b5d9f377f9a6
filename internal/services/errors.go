package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures for the HTTP layer.
type ErrorKind int

const (
	// KindUnprocessable means the client-supplied data is invalid: an empty
	// required field, a duplicate field name, a type/value mismatch or a
	// malformed email address.
	KindUnprocessable ErrorKind = iota + 1
	// KindNotFound means a referenced user or contractor is absent.
	KindNotFound
	// KindInternal means a storage, transaction or rendering failure. The
	// wrapped cause is logged server-side and never sent to the caller.
	KindInternal
)

// ServiceError carries a failure kind and a user-facing message across the
// service boundary. Services return these instead of raising panics; only
// the Message is ever serialized to clients.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Unprocessable builds a client-input failure.
func Unprocessable(message string) error {
	return &ServiceError{Kind: KindUnprocessable, Message: message}
}

// NotFound builds a missing-entity failure.
func NotFound(message string) error {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

// Internal builds a server-side failure wrapping its cause.
func Internal(message string, err error) error {
	return &ServiceError{Kind: KindInternal, Message: message, Err: err}
}

// AsServiceError extracts a ServiceError from an error chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
