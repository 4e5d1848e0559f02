package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrExhausted         = errors.New("no seats available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("booking cannot be cancelled")
	ErrConflict          = errors.New("conflict")
	ErrStorage           = errors.New("storage failure")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// TransitionError describes a rejected state-machine move.
type TransitionError struct {
	Field string
	From  string
	To    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %s to %s", e.Field, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func NewBookingTransitionError(from, to BookingStatus) error {
	return &TransitionError{Field: "booking status", From: string(from), To: string(to)}
}

func NewPaymentTransitionError(from, to PaymentStatus) error {
	return &TransitionError{Field: "payment status", From: string(from), To: string(to)}
}
