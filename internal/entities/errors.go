package entities

import (
	"errors"
	"fmt"
)

// Validation errors are detected before any store call.
var (
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidTaxID   = errors.New("invalid tax id")
	ErrInvalidPhone   = errors.New("invalid phone")
	ErrNoValidPhones  = errors.New("no valid phones")
	ErrDuplicateTaxID = errors.New("duplicate tax id")
	ErrDuplicatePhone = errors.New("duplicate phone")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateEmail = errors.New("duplicate email")
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("rate limited")
	ErrPersistence        = errors.New("persistence failure")
)

// PersistenceError wraps a failure reported by a store. It matches
// ErrPersistence with errors.Is and unwraps to the store's error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence wraps err as a PersistenceError, leaving nil and ErrNotFound untouched.
func Persistence(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
