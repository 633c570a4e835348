// Package errors provides the error taxonomy shared by the catalog adapters and services.
package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested document does not exist in the store.
var ErrNotFound = errors.New("document not found")

// StoreError covers every document store failure other than a missing document:
// transport faults, malformed queries, constraint violations. The underlying
// message is preserved for diagnostics.
type StoreError struct {
	Op    string
	Index string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Index, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// SequenceError is a counter store failure during ID generation or bootstrap.
type SequenceError struct {
	Key string
	Err error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("sequence %s: %v", e.Key, e.Err)
}

func (e *SequenceError) Unwrap() error {
	return e.Err
}
