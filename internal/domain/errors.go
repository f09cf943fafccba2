package domain

import "errors"

// Sentinel kinds; handlers map them to HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAccessDenied       = errors.New("access denied")
	ErrFailedPrecondition = errors.New("failed precondition")
)

// Error carries a user-facing message plus one of the sentinel kinds, so
// callers can use errors.Is(err, domain.ErrNotFound) instead of matching text.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func InvalidArgument(msg string) error {
	return &Error{Kind: ErrInvalidArgument, Message: msg}
}

func AccessDenied(msg string) error {
	return &Error{Kind: ErrAccessDenied, Message: msg}
}

func FailedPrecondition(msg string) error {
	return &Error{Kind: ErrFailedPrecondition, Message: msg}
}
