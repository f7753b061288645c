package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the booking engine.  Handlers map them to
// HTTP statuses with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrIdentityConflict  = errors.New("contact is registered under another name")
	ErrDuplicateBooking  = errors.New("contact already has a booking at this time")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("booking is cancelled")
	ErrLastItemProtected = errors.New("cannot remove the only item of a booking")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IdentityConflictError reports the name already bound to a contact value
// so the caller can ask the customer to reuse it.
type IdentityConflictError struct {
	ExistingName string
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("contact is registered under the name %q, please use the same name", e.ExistingName)
}

func (e *IdentityConflictError) Unwrap() error { return ErrIdentityConflict }
