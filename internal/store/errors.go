package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable is matched by every open, read or write failure
	ErrStoreUnavailable = errors.New("question store unavailable")

	// ErrQuestionNotFound is returned when an answer is recorded for an unknown id
	ErrQuestionNotFound = errors.New("question not found")
)

// UnavailableError wraps a persistence failure with the operation that hit it
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}
