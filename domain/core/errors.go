package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition errors
	ErrPrecondition        = errors.New("precondition violated")
	ErrInsufficientData    = fmt.Errorf("%w: insufficient data", ErrPrecondition)
	ErrLengthMismatch      = fmt.Errorf("%w: series length mismatch", ErrPrecondition)
	ErrUnknownAttribute    = fmt.Errorf("%w: unknown attribute", ErrPrecondition)
	ErrNonNumericAttribute = fmt.Errorf("%w: attribute is not numeric", ErrPrecondition)
	ErrNoSeries            = fmt.Errorf("%w: no series requested", ErrPrecondition)

	// Data errors
	ErrInvalidRecord = errors.New("invalid student record")
	ErrUnknownValue  = errors.New("unknown category value")

	// Load errors
	ErrLoadFailed = errors.New("record load failed")
	ErrNotLoaded  = errors.New("records not loaded")
)

// Error constructors with context
func NewInsufficientDataError(n, min int) error {
	return fmt.Errorf("%w: have %d observations, need at least %d", ErrInsufficientData, n, min)
}

func NewLengthMismatchError(a, b int) error {
	return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, a, b)
}

func NewInvalidRecordError(id string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidRecord, id, reason)
}

func NewLoadError(err error) error {
	return fmt.Errorf("%w: %w", ErrLoadFailed, err)
}

// Error checking helpers
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrUnknownValue)
}

func IsLoadError(err error) bool {
	return errors.Is(err, ErrLoadFailed) ||
		errors.Is(err, ErrNotLoaded)
}
