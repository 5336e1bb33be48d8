package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Manage the ephemeral guest session",
	Long: `Turn guest mode on or off, or show its status.

Guest state lives only on this machine and is wiped after ` +
		domain.GuestInactivityLimit.String() + ` of inactivity or 'docchat guest off'.`,
}

var guestOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Activate guest mode",
	RunE:  runGuestOn,
}

var guestOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Deactivate guest mode and wipe local state",
	RunE:  runGuestOff,
}

var guestStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show guest session status",
	RunE:  runGuestStatus,
}

func init() {
	guestCmd.AddCommand(guestOnCmd)
	guestCmd.AddCommand(guestOffCmd)
	guestCmd.AddCommand(guestStatusCmd)
	rootCmd.AddCommand(guestCmd)
}

func runGuestOn(cmd *cobra.Command, _ []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if signedIn() {
		return errors.New("signed in; run 'docchat auth logout' before switching to guest mode")
	}

	user, err := sessionManager.Activate()
	if err != nil {
		return fmt.Errorf("failed to activate guest mode: %w", err)
	}

	cmd.Printf("Guest mode on. Chatting as %s.\n", user.Name)
	cmd.Printf("Local state is wiped after %s of inactivity.\n", domain.GuestInactivityLimit)
	return nil
}

func runGuestOff(cmd *cobra.Command, _ []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}

	// Deactivate regardless of the flag; any stray local state goes
	// with it.
	wasActive := sessionManager.Active()
	sessionManager.Deactivate()

	if !wasActive {
		cmd.Println("Guest mode is not active.")
		return nil
	}
	cmd.Println("Guest mode off. Local documents and chat history wiped.")
	return nil
}

func runGuestStatus(cmd *cobra.Command, _ []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}

	if !sessionManager.Active() {
		cmd.Println("Guest mode: off")
		return nil
	}

	cmd.Println("Guest mode: on")
	if guestService != nil {
		cmd.Printf("Documents:  %d\n", len(guestService.Documents()))
		cmd.Printf("Messages:   %d\n", len(guestService.History()))
		cmd.Printf("Storage:    %s\n", guestService.StorageUsage())
	}
	return nil
}
