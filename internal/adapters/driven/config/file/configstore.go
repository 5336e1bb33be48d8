// Package file provides the TOML-backed client configuration store.
// Configuration lives in ~/.docchat/config.toml and covers the backend
// address, the storage backend selection and the authenticated-mode
// session. Guest collections never live here; they belong to the
// key-value storage backends.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Storage backend names accepted in configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the persisted client configuration.
type Config struct {
	// Server is the docchat backend base URL.
	Server string `toml:"server"`

	// Storage selects the local storage backend: file, sqlite or
	// memory.
	Storage string `toml:"storage"`

	// DataDir overrides the default ~/.docchat/data directory.
	DataDir string `toml:"data_dir,omitempty"`

	// Token is the authenticated-mode session token, empty in guest
	// mode.
	Token string `toml:"token,omitempty"`

	// Email is the signed-in account, empty in guest mode.
	Email string `toml:"email,omitempty"`
}

// defaultConfig returns the configuration used before the user has
// saved anything.
func defaultConfig() Config {
	return Config{
		Server:  "http://localhost:8080",
		Storage: BackendFile,
	}
}

// ConfigStore reads and writes the TOML configuration file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewConfigStore creates a config store.
// If configDir is empty, defaults to ~/.docchat.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docchat")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		config:   defaultConfig(),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Get returns a copy of the current configuration.
func (s *ConfigStore) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update applies fn to the configuration and persists the result.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.config)
	return s.save()
}

// SetSession stores the authenticated-mode token and account, or
// clears them when both are empty.
func (s *ConfigStore) SetSession(token, email string) error {
	return s.Update(func(c *Config) {
		c.Token = token
		c.Email = email
	})
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.config)
	if err != nil {
		return err
	}

	// Write with restricted permissions; the file may hold a token.
	return os.WriteFile(s.filePath, data, 0600)
}

// load reads configuration from the TOML file.
func (s *ConfigStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var loaded Config
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	// Missing fields keep their defaults.
	if loaded.Server == "" {
		loaded.Server = defaultConfig().Server
	}
	if loaded.Storage == "" {
		loaded.Storage = defaultConfig().Storage
	}
	s.config = loaded
	return nil
}
