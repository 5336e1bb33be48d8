// Package memory provides an in-memory key-value storage backend.
// It backs tests and the ephemeral "memory" storage mode, where guest
// state does not survive the process.
package memory

import (
	"errors"
	"sync"

	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
)

// Ensure KeyValueStore implements the interface.
var _ driven.KeyValueStore = (*KeyValueStore)(nil)

// errWriteFailed is returned when simulated write failures are on.
var errWriteFailed = errors.New("memory store: write failed")

// KeyValueStore is an in-memory implementation of driven.KeyValueStore.
type KeyValueStore struct {
	mu   sync.RWMutex
	data map[string]string

	// failWrites makes Set and Delete fail, simulating disabled
	// storage or an exhausted quota in tests.
	failWrites bool
}

// NewKeyValueStore creates a new in-memory key-value store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		data: make(map[string]string),
	}
}

// Get returns the value for a key and whether it was present.
func (s *KeyValueStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// Set overwrites the full value for a key.
func (s *KeyValueStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errWriteFailed
	}
	s.data[key] = value
	return nil
}

// Delete removes a key.
func (s *KeyValueStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errWriteFailed
	}
	delete(s.data, key)
	return nil
}

// Close releases resources. A no-op for the in-memory store.
func (s *KeyValueStore) Close() error {
	return nil
}

// FailWrites toggles simulated write failures.
func (s *KeyValueStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// Len returns the number of stored keys.
func (s *KeyValueStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
