package msgpack

import "github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"

// Error is the error type returned by every operation in this package.
type Error = errors.Error

// Reason classifies an Error.
type Reason = errors.Reason

// Failure kinds.
const (
	Other       = errors.Other
	TooBig      = errors.TooBig
	BadLength   = errors.BadLength
	InvalidType = errors.InvalidType
	EndOfStream = errors.EndOfStream
)

// Sentinels for use with errors.Is. They match any Error of the same Reason.
var (
	ErrOther       = errors.ErrOther
	ErrTooBig      = errors.ErrTooBig
	ErrBadLength   = errors.ErrBadLength
	ErrInvalidType = errors.ErrInvalidType
	ErrEndOfStream = errors.ErrEndOfStream
)

var errAlreadyFinished = errors.New(errors.Other, "collection already finished")
