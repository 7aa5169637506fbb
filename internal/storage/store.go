// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

// ErrPersistence marks a failure to read from or write to the backing store.
// Callers that keep authoritative state in memory log it and carry on.
var ErrPersistence = errors.New("persistence error")

// Store defines a string-valued key-value store.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the session or history layers.
type Store interface {
	// GetValues returns the stored values for the given keys.
	// Keys that were never written are absent from the result map.
	GetValues(ctx context.Context, keys ...string) (map[string]string, error)

	// SetValues writes all given values in a single transaction.
	SetValues(ctx context.Context, values map[string]string) error

	// Close releases any resources held by the store.
	Close() error
}

// Wrap tags err as a persistence failure while keeping the original error in the chain.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &persistenceError{op: op, err: err}
}

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *persistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.err}
}
