// Package file provides a file-backed key-value storage backend.
// All slots live in a single JSON file, mirroring browser local
// storage: one shared origin-wide store, whole-slot overwrites.
//
// The file is watched for external changes so that a second docchat
// process writing the same file is picked up on the next read. Writers
// are not coordinated; concurrent processes are last-write-wins.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
	"github.com/docchat-labs/docchat-cli/internal/logger"
)

// Ensure KeyValueStore implements the interface.
var _ driven.KeyValueStore = (*KeyValueStore)(nil)

// storageFile is the name of the JSON file holding all slots.
const storageFile = "local.json"

// KeyValueStore is a file-backed implementation of driven.KeyValueStore.
type KeyValueStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewKeyValueStore creates a file-backed store in dataDir.
// If dataDir is empty, defaults to ~/.docchat/data.
func NewKeyValueStore(dataDir string) (*KeyValueStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docchat", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &KeyValueStore{
		filePath: filepath.Join(dataDir, storageFile),
		data:     make(map[string]string),
		done:     make(chan struct{}),
	}

	// An unreadable file is treated as empty, matching the
	// corruption-tolerant read semantics of the slots above it.
	if err := s.load(); err != nil {
		logger.Warn("storage file unreadable, starting empty: %v", err)
		s.data = make(map[string]string)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating storage watcher: %w", err)
	}
	if err := watcher.Add(dataDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching data directory: %w", err)
	}
	s.watcher = watcher
	go s.watch()

	return s, nil
}

// Get returns the value for a key and whether it was present.
func (s *KeyValueStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// Set overwrites the full value for a key and persists immediately.
func (s *KeyValueStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.save()
}

// Delete removes a key and persists immediately.
func (s *KeyValueStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.save()
}

// Close stops the file watcher.
func (s *KeyValueStore) Close() error {
	close(s.done)
	return s.watcher.Close()
}

// Path returns the storage file path.
func (s *KeyValueStore) Path() string {
	return s.filePath
}

// save writes all slots to the JSON file (caller must hold lock).
func (s *KeyValueStore) save() error {
	data, err := json.Marshal(s.data)
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// load reads all slots from the JSON file (caller must hold lock or
// have exclusive access).
func (s *KeyValueStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]string)
			return nil
		}
		return err
	}

	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded == nil {
		loaded = make(map[string]string)
	}
	s.data = loaded
	return nil
}

// watch reloads the in-process cache when the storage file changes on
// disk. Reloading our own writes is harmless; the file already holds
// what the cache holds.
func (s *KeyValueStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			s.mu.Lock()
			if err := s.load(); err != nil {
				logger.Warn("reloading storage file: %v", err)
			}
			s.mu.Unlock()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("storage watcher: %v", err)
		}
	}
}
