package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the authenticated session",
}

var authRegisterCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRegister,
}

var authLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE:  runAuthLogout,
}

func init() {
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	return authenticate(cmd, args[0], true)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	return authenticate(cmd, args[0], false)
}

func authenticate(cmd *cobra.Command, email string, register bool) error {
	if authClient == nil || configStore == nil {
		return errors.New("auth client not configured")
	}

	// Signing in ends any guest session first. The teardown runs even
	// when the flag is off, so no local guest data survives the switch
	// to authenticated mode.
	if sessionManager != nil {
		wasActive := sessionManager.Active()
		sessionManager.Deactivate()
		if wasActive {
			cmd.Println("Guest mode off. Local documents and chat history wiped.")
		}
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	auth := authClient.Login
	if register {
		auth = authClient.Register
	}
	result, err := auth(context.Background(), email, password)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := configStore.SetSession(result.Token, result.User.Email); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	cmd.Printf("Signed in as %s\n", result.User.Email)
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if configStore.Get().Token == "" {
		cmd.Println("Not signed in.")
		return nil
	}

	if err := configStore.SetSession("", ""); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	cmd.Println("Signed out.")
	return nil
}

// readPassword prompts for a password without echoing when stdin is a
// terminal, and falls back to a plain line read otherwise (tests,
// pipes).
func readPassword(cmd *cobra.Command) (string, error) {
	cmd.Print("Password: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
