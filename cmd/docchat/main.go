// Command docchat is the document-chat client. It wires the storage,
// API and config adapters to the core services and hands control to
// the CLI.
package main

import (
	"fmt"
	"os"

	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/api"
	configfile "github.com/docchat-labs/docchat-cli/internal/adapters/driven/config/file"
	storagefile "github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/file"
	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/guestkv"
	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docchat-labs/docchat-cli/internal/adapters/driving/cli"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
	"github.com/docchat-labs/docchat-cli/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open configuration: %w", err)
	}
	cfg := configStore.Get()

	kv, err := openKeyValueStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open local storage: %w", err)
	}
	defer kv.Close()

	store := guestkv.NewStore(kv)
	guestClient := api.NewGuestClient(api.GuestConfig{BaseURL: cfg.Server})
	authClient := api.NewAuthClient(cfg.Server, cfg.Token, 0)

	cli.SetServices(cli.Services{
		Guest:       services.NewGuestService(store, guestClient),
		Session:     services.NewSessionManager(store),
		AuthClient:  authClient,
		ConfigStore: configStore,
	})

	return cli.Execute()
}

// openKeyValueStore selects the storage backend named in configuration.
func openKeyValueStore(cfg configfile.Config) (driven.KeyValueStore, error) {
	switch cfg.Storage {
	case configfile.BackendSQLite:
		return sqlite.NewKeyValueStore(cfg.DataDir)
	case configfile.BackendMemory:
		return memory.NewKeyValueStore(), nil
	case configfile.BackendFile, "":
		return storagefile.NewKeyValueStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
