// Package poserr defines the error taxonomy for the POS backbone.
//
// Low-level driver and transport errors are never exposed raw; every
// failure surfaces as one of these kinds with a human-readable message
// and the underlying cause attached for errors.Is / errors.As.
package poserr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	// KindConnection covers pool, driver and TLS setup failures.
	KindConnection Kind = iota
	// KindQuery covers failed reads/writes against a data source,
	// including failed transactions.
	KindQuery
	// KindProtocol covers payment-terminal communication failures.
	KindProtocol
	// KindValidation covers caller-level issues (insufficient stock,
	// insufficient tendered cash).
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	case KindProtocol:
		return "protocol"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// Error is a classified POS error wrapping its cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Connection wraps cause as a pool/driver/TLS setup failure.
func Connection(cause error, format string, args ...any) error {
	return &Error{Kind: KindConnection, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Query wraps cause as a data-source read/write failure.
func Query(cause error, format string, args ...any) error {
	return &Error{Kind: KindQuery, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Protocol wraps cause as a payment-terminal communication failure.
func Protocol(cause error, format string, args ...any) error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Validation reports a caller-level problem. There is no cause to wrap;
// the message is the whole story.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) a poserr.Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}
