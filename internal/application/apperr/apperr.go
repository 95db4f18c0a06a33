// Package apperr defines the error kinds every operation reports, so the
// HTTP layer can map them to status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// validationError carries a human-readable message and matches ErrValidation.
type validationError struct {
	msg   string
	cause error
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func (e *validationError) Unwrap() error { return e.cause }

// Validation returns an error of kind ErrValidation with msg as its text.
func Validation(msg string) error {
	return &validationError{msg: msg}
}

// Invalid wraps a domain error as a validation failure, keeping its text
// and its identity for errors.Is.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &validationError{msg: err.Error(), cause: err}
}

// notFoundError names what was missing and matches ErrNotFound.
type notFoundError struct {
	what string
}

func (e *notFoundError) Error() string { return e.what + " not found" }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound returns an error of kind ErrNotFound, e.g. NotFound("team").
func NotFound(what string) error {
	return &notFoundError{what: what}
}

// StoreError is a failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError for op. A nil err stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStore reports whether err is (or wraps) a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// conflictError matches ErrConflict and keeps the underlying reason.
type conflictError struct {
	cause error
}

func (e *conflictError) Error() string { return e.cause.Error() }

func (e *conflictError) Is(target error) bool { return target == ErrConflict }

func (e *conflictError) Unwrap() error { return e.cause }

// Conflict marks err as a uniqueness or state conflict.
func Conflict(err error) error {
	if err == nil {
		return nil
	}
	return &conflictError{cause: err}
}
