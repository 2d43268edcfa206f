package api

import (
	"errors"
	"fmt"
)

// Kind classifies where a failure came from.
type Kind int

const (
	// KindTransport means no usable response: network error, timeout,
	// cancelled context, rate limiter refusal or an open breaker.
	KindTransport Kind = iota + 1
	// KindServer means the backend answered with a non-2xx status.
	KindServer
	// KindValidation means a local check failed before any request.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrUnauthorized matches any *Error produced by a 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error is returned by every operation. Message is always safe to show.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindValidation {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports a local input problem.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Message returns the displayable message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}
