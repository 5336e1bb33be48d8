// Package cli implements the docchat command surface. Commands talk to
// the core exclusively through the driving ports; services are injected
// once at startup via SetServices.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/api"
	configfile "github.com/docchat-labs/docchat-cli/internal/adapters/driven/config/file"
	"github.com/docchat-labs/docchat-cli/internal/core/domain"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driving"
	"github.com/docchat-labs/docchat-cli/internal/logger"
)

// Injected services. Nil services make the owning commands fail with a
// clear error instead of panicking.
var (
	guestService   driving.GuestService
	sessionManager driving.SessionManager
	authClient     *api.AuthClient
	configStore    *configfile.ConfigStore
)

// verboseFlag enables diagnostic logging.
var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with an AI assistant about your documents",
	Long: `docchat is a document-aware chat client.

In guest mode all state (documents, chat history) stays on this machine
and is discarded after 30 minutes of inactivity or an explicit sign-out.
Sign in with 'docchat auth login' to keep documents and history on the
server instead.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)

		// Each invocation is a visibility window for the guest
		// session: run the expiry check on entry...
		if sessionManager != nil {
			sessionManager.HandleVisible()
		}
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		// ...and record the hidden timestamp on exit.
		if sessionManager != nil {
			sessionManager.HandleHidden()
		}
	},
	SilenceUsage: true,
}

// Services bundles everything the commands need.
type Services struct {
	Guest       driving.GuestService
	Session     driving.SessionManager
	AuthClient  *api.AuthClient
	ConfigStore *configfile.ConfigStore
}

// SetServices injects the service implementations.
func SetServices(s Services) {
	guestService = s.Guest
	sessionManager = s.Session
	authClient = s.AuthClient
	configStore = s.ConfigStore
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
}

// signedIn reports whether an authenticated-mode session is stored.
func signedIn() bool {
	return configStore != nil && configStore.Get().Token != ""
}

// requireGuest gates the guest data path. Local collections may only
// be touched inside an active guest session; anything written there is
// then covered by the expiry and teardown lifecycle.
func requireGuest() error {
	if guestService == nil || sessionManager == nil {
		return errors.New("guest service not configured")
	}
	if !sessionManager.Active() {
		return fmt.Errorf("%w: run 'docchat guest on' or sign in with 'docchat auth login'", domain.ErrGuestInactive)
	}
	return nil
}
