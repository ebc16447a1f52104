package channel

import (
	"errors"
	"fmt"
)

var (
	ErrHandlerNotFound = errors.New("handler not found")
	ErrEncode          = errors.New("encode failed")
	ErrDecode          = errors.New("decode failed")
	ErrHandler         = errors.New("handler failed")
	// ErrDuplicateCode is the panic value for registering a code twice.
	ErrDuplicateCode = errors.New("message code already registered")
	// ErrPayloadTooLarge is returned when a framed payload exceeds
	// MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
)

// Error is returned by Send and Dispatch. Kind is one of ErrHandlerNotFound,
// ErrEncode, ErrDecode or ErrHandler, so callers can use errors.Is.
type Error struct {
	Kind error
	Code uint32
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("channel: code %d: %v", e.Code, e.Kind)
	}
	return fmt.Sprintf("channel: code %d: %v: %v", e.Code, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// HandlerNotFound reports that no handler is registered for code.
func HandlerNotFound(code uint32) *Error {
	return &Error{Kind: ErrHandlerNotFound, Code: code}
}

func wrapError(kind error, code uint32, err error) error {
	var chErr *Error
	if errors.As(err, &chErr) {
		return err
	}
	return &Error{Kind: kind, Code: code, Err: err}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrHandlerNotFound):
		return "not_found"
	case errors.Is(err, ErrEncode):
		return "encode_error"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	default:
		return "handler_error"
	}
}
