// Package errors defines the failure kinds shared by the wire layer and the
// public codec package.
package errors

import (
	"fmt"
	"strings"
)

// Reason classifies a codec failure.
type Reason uint8

const (
	// Other wraps a nested failure, or anything that has no kind of its own.
	Other Reason = iota
	// TooBig means a length does not fit the largest header of its class.
	TooBig
	// BadLength means a declared or expected count did not match the items produced.
	BadLength
	// InvalidType means the wire shape cannot satisfy the requested target shape.
	InvalidType
	// EndOfStream means an item was requested after the source ran out.
	EndOfStream
)

// String implements fmt.Stringer
func (r Reason) String() string {
	switch r {
	case Other:
		return "other"
	case TooBig:
		return "too big"
	case BadLength:
		return "bad length"
	case InvalidType:
		return "invalid type"
	case EndOfStream:
		return "end of stream"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Error is the error type returned by every codec operation.
type Error struct {
	Reason Reason
	Detail string
	Cause  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("msgpack: ")
	b.WriteString(e.Reason.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the chained cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Reason. Detail and
// Cause are ignored, so the package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Reason == t.Reason
	}
	return false
}

// Sentinels for errors.Is comparisons.
var (
	ErrOther       = &Error{Reason: Other}
	ErrTooBig      = &Error{Reason: TooBig}
	ErrBadLength   = &Error{Reason: BadLength}
	ErrInvalidType = &Error{Reason: InvalidType}
	ErrEndOfStream = &Error{Reason: EndOfStream}
)

// Simple returns an error carrying only a reason.
func Simple(r Reason) *Error {
	return &Error{Reason: r}
}

// New returns an error with a formatted detail message.
func New(r Reason, format string, args ...any) *Error {
	if len(args) > 0 {
		return &Error{Reason: r, Detail: fmt.Sprintf(format, args...)}
	}
	return &Error{Reason: r, Detail: format}
}

// Chain wraps cause under a new error of the given reason.
func Chain(r Reason, detail string, cause error) *Error {
	return &Error{Reason: r, Detail: detail, Cause: cause}
}

// Mismatch reports that got cannot be read as want.
func Mismatch(want, got string) *Error {
	return &Error{Reason: InvalidType, Detail: fmt.Sprintf("expected %s, found %s", want, got)}
}

// InvalidLength reports an unexpected item count.
func InvalidLength(n int) *Error {
	return &Error{Reason: BadLength, Detail: fmt.Sprintf("invalid length %d", n)}
}

// Exhausted reports that the source has no more items.
func Exhausted() *Error {
	return &Error{Reason: EndOfStream}
}

// ReasonOf returns the reason of the outermost *Error in err's chain, and
// false if there is none.
func ReasonOf(err error) (Reason, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Reason, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return Other, false
		}
		err = u.Unwrap()
	}
	return Other, false
}
