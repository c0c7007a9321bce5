package service

import (
	"errors"
)

// Failure conditions surfaced to callers by name. Eligibility and capacity
// errors are expected, user-recoverable outcomes and cause no mutation.
var (
	// ErrCardNotFound is returned when the referenced card does not exist
	ErrCardNotFound = errors.New("card not found")

	// ErrUserNotFound is returned when the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrSelfInteraction is returned when a card's sender or one of its
	// recipients attempts to like the card
	ErrSelfInteraction = errors.New("sender and recipients cannot like their own card")

	// ErrLikeLimitReached is returned when a card already carries the
	// maximum number of likes
	ErrLikeLimitReached = errors.New("like limit reached for this card")

	// ErrInsufficientBalance is returned when a debit would overdraw the
	// actor's weekly balance
	ErrInsufficientBalance = errors.New("insufficient weekly balance")
)

// ValidationError describes a rejected input field. Validation happens
// synchronously before the ledger is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// IsUserFacing reports whether err is an expected, user-recoverable outcome
// rather than a system fault. User-facing failures are never logged at a
// severity implying operator action.
func IsUserFacing(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSelfInteraction) ||
		errors.Is(err, ErrLikeLimitReached) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.As(err, &ve)
}
