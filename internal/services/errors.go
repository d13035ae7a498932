package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrTransport      = errors.New("transport error")
	ErrProtocol       = errors.New("protocol error")
	ErrServerFailure  = errors.New("server reported failure")
	ErrRetryExhausted = errors.New("retry exhausted")
	ErrInvalidState   = errors.New("invalid state")
)

// Error tags a failure with one of the exported markers and keeps the message
// meant for the user apart from the diagnostic cause.
type Error struct {
	Marker    error
	Operation string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 4)
	if e.Marker != nil {
		parts = append(parts, e.Marker.Error())
	}
	if op := strings.TrimSpace(e.Operation); op != "" {
		parts = append(parts, op)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Marker != nil {
		errs = append(errs, e.Marker)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap builds an *Error for the given marker. The marker should be one of the
// exported sentinel errors above; nil defaults to ErrTransport.
func Wrap(marker error, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransport
	}
	return &Error{Marker: marker, Operation: operation, Message: message, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(marker error, operation string, err error, format string, args ...any) error {
	return Wrap(marker, operation, fmt.Sprintf(format, args...), err)
}

// Message returns the user-facing text for err: the Message of the outermost
// *Error when present, otherwise the error string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *Error
	if errors.As(err, &svcErr) && strings.TrimSpace(svcErr.Message) != "" {
		return strings.TrimSpace(svcErr.Message)
	}
	return err.Error()
}

// KindOf returns a short label for the marker carried by err.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrServerFailure):
		return "server_failure"
	case errors.Is(err, ErrRetryExhausted):
		return "retry_exhausted"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
