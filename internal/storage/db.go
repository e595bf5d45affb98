// Package storage provides the key-value stores behind the pending-spend
// ledger.
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix in key order.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	// NewBatch starts a set of writes that are applied together on Commit.
	NewBatch() Batch
	Close() error
}

// Batch collects writes and applies them atomically.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
}
