package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is matched when an operation references a missing task.
	ErrNotFound = errors.New("not found")

	// ErrIDSpaceExhausted is returned by Add once the ID counter reaches
	// the largest int. IDs are never reused, so no further task fits.
	ErrIDSpaceExhausted = errors.New("task ID space exhausted")
)

// InvalidInputError reports a field that failed its constraint.
type InvalidInputError struct {
	Field   string // "title" or "description"
	Limit   int    // the violated maximum length, 0 for emptiness
	Message string
}

// Error implements the error interface
func (e *InvalidInputError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrInvalidInput) succeed.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NotFoundError reports an operation on a task ID that does not exist.
type NotFoundError struct {
	ID int
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task with ID %d not found", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
