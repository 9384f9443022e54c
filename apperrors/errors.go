package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// SlotUnavailableError is returned when a requested booking time is not in
// the currently available slot set. It carries the free slots so the caller
// can re-offer valid choices.
type SlotUnavailableError struct {
	Requested time.Time
	Available []time.Time
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s is not available (%d open slots remain)",
		e.Requested.Format("15:04"), len(e.Available))
}

// ConflictError is returned when a consultation is already active.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return "another consultation is already in progress"
	}
	return e.Message
}

// InvalidTransitionError is returned when a status transition is attempted
// from a terminal or incompatible state. State is left unchanged.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %q to %q", e.From, e.To)
}

// PersistenceError wraps a failed store call. Callers must not assume any
// partial state change was committed.
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

// Persistence wraps err as a PersistenceError, or returns nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsSlotUnavailable reports whether err is a SlotUnavailableError.
func IsSlotUnavailable(err error) bool {
	var target *SlotUnavailableError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}
