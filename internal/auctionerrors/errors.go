package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("concurrent modification, retry")
	ErrInternal = errors.New("internal error")
)

// business logic errors
var (
	ErrInvalidState      = errors.New("operation not valid for current job status")
	ErrInvalidTransition = errors.New("job status transition not allowed")
	ErrWindowClosed      = errors.New("bidding window closed")
	ErrInvalidAmount     = errors.New("invalid bid amount")
	ErrInvalidInput      = errors.New("invalid input")
)

// Kind returns a stable, machine readable code for err.
// Clients switch on it instead of parsing messages.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
