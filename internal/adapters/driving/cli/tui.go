package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/docchat-labs/docchat-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive chat interface",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if signedIn() {
		return errors.New("the interactive interface is guest-only; run 'docchat auth logout' first")
	}
	if err := requireGuest(); err != nil {
		return err
	}

	return tui.Run(guestService, sessionManager)
}
