// Package bitcoinerrors defines the typed error kinds shared by every
// internal package: precondition violations from construction
// invariants, parse failures from malformed wire data, crypto errors
// from malformed signatures or keys, and lookup errors from a
// PrevTxSource collaborator.
package bitcoinerrors

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Wrap one of these with fmt.Errorf("...: %w", Kind)
// so callers can still errors.Is against the kind after adding detail.
var (
	ErrPrecondition = errors.New("precondition violation")
	ErrParse        = errors.New("parse error")
	ErrCrypto       = errors.New("crypto error")
	ErrNotFound     = errors.New("not found")
	ErrTransport    = errors.New("transport error")
)

// Precondition wraps ErrPrecondition with the violated invariant.
func Precondition(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// Parse wraps ErrParse with the offending byte offset.
func Parse(offset int, format string, args ...interface{}) error {
	return fmt.Errorf("%w at offset %d: %s", ErrParse, offset, fmt.Sprintf(format, args...))
}

// Crypto wraps ErrCrypto with a description. It never includes secret
// material.
func Crypto(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCrypto, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the lookup key.
func NotFound(txID string) error {
	return fmt.Errorf("%w: tx %s", ErrNotFound, txID)
}

// Transport wraps ErrTransport with the underlying transport failure.
func Transport(err error) error {
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
