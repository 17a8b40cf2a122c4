package domain

import (
	"errors"
	"strings"
)

// Authentication and authorization.
var (
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// Lookups and uniqueness.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmailTaken      = errors.New("user already exists")
	ErrRequestInFlight = errors.New("a request with this idempotency key is still being processed")
)

// Input, cart and order errors.
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidOrder    = errors.New("invalid order")
)

// ValidationError carries field-level details. Kind is the sentinel the error
// unwraps to (ErrValidation or ErrInvalidOrder).
type ValidationError struct {
	Kind    error
	Details []string
}

// NewValidationError returns a ValidationError of kind ErrValidation.
func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Kind: ErrValidation, Details: details}
}

// NewInvalidOrderError returns a ValidationError of kind ErrInvalidOrder.
func NewInvalidOrderError(details ...string) *ValidationError {
	return &ValidationError{Kind: ErrInvalidOrder, Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Add appends a detail line.
func (e *ValidationError) Add(detail string) {
	e.Details = append(e.Details, detail)
}

// OrNil returns nil when no details were collected.
func (e *ValidationError) OrNil() error {
	if len(e.Details) == 0 {
		return nil
	}
	return e
}
