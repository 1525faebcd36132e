// Package twerrors carries the error taxonomy every twintail component
// reports through: a small closed set of kinds a caller can switch on,
// wrapping whatever underlying error actually occurred.
package twerrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig         Kind = "config"
	KindNetwork        Kind = "network"
	KindProtocol       Kind = "protocol"
	KindVersionMismatch Kind = "version_mismatch"
	KindCrypto         Kind = "crypto"
	KindCodec          Kind = "codec"
	KindIO             Kind = "io"
	KindCancelled      Kind = "cancelled"
)

// Error is a typed pipeline error: Kind is stable across releases and is
// meant to be switched on by callers (notably the CLI's exit-code mapping),
// Err carries the original cause for logging.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind of err if it (or something it wraps) is a *Error.
// Unclassified errors are reported as KindIO, the taxonomy's catch-all.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}
