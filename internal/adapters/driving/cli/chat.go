package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message to the assistant",
	Long: `Send a message to the assistant, optionally grounded in your
documents.

Context modes:
  none      no document context (default)
  all       include every document
  selected  include only documents named with --doc

Examples:
  docchat chat "what is this project about?" --context all
  docchat chat "summarise the report" --context selected --doc <doc-id>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation history",
	RunE:  runHistory,
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show local storage usage",
	RunE:  runUsage,
}

// Flags for chat.
var (
	chatContextMode string
	chatContextDocs []string
)

func init() {
	chatCmd.Flags().StringVarP(
		&chatContextMode, "context", "c", string(domain.ContextNone), "Context mode: none, selected or all")
	chatCmd.Flags().StringArrayVarP(
		&chatContextDocs, "doc", "d", nil, "Document id to include (repeatable, implies --context selected)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(usageCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	if signedIn() {
		return runRemoteChat(cmd, message)
	}

	if err := requireGuest(); err != nil {
		return err
	}

	mode := domain.ContextMode(chatContextMode)
	if len(chatContextDocs) > 0 {
		mode = domain.ContextSelected
	}
	if !mode.Valid() {
		return fmt.Errorf("unknown context mode %q: use none, selected or all", chatContextMode)
	}
	if mode == domain.ContextSelected && len(chatContextDocs) == 0 {
		return errors.New("--context selected requires at least one --doc")
	}

	msg, err := guestService.SendMessage(context.Background(), message, mode, chatContextDocs)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	printChatMessage(cmd, msg)
	return nil
}

// runRemoteChat forwards the message through the authenticated path.
func runRemoteChat(cmd *cobra.Command, message string) error {
	if authClient == nil {
		return errors.New("auth client not configured")
	}

	var selected []int
	for _, raw := range chatContextDocs {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("remote document ids are numeric, got %q", raw)
		}
		selected = append(selected, id)
	}
	useAll := domain.ContextMode(chatContextMode) == domain.ContextAll && len(selected) == 0

	msg, err := authClient.Chat(context.Background(), message, selected, useAll)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	cmd.Println(msg.Response)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if signedIn() {
		return runRemoteHistory(cmd)
	}

	if err := requireGuest(); err != nil {
		return err
	}

	history := guestService.History()
	if len(history) == 0 {
		cmd.Println("No messages yet.")
		return nil
	}

	for _, msg := range history {
		printChatMessage(cmd, msg)
		cmd.Println()
	}
	return nil
}

func runRemoteHistory(cmd *cobra.Command, _ ...string) error {
	if authClient == nil {
		return errors.New("auth client not configured")
	}

	msgs, err := authClient.ChatHistory(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	if len(msgs) == 0 {
		cmd.Println("No messages yet.")
		return nil
	}
	for _, msg := range msgs {
		cmd.Printf("> %s\n%s\n\n", msg.Message, msg.Response)
	}
	return nil
}

func runUsage(cmd *cobra.Command, _ []string) error {
	if err := requireGuest(); err != nil {
		return err
	}

	cmd.Printf("Local storage: %s\n", guestService.StorageUsage())
	return nil
}

// printChatMessage renders one conversation turn.
func printChatMessage(cmd *cobra.Command, msg domain.ChatMessage) {
	cmd.Printf("> %s\n", msg.Message)
	cmd.Println(msg.Response)
	if len(msg.ContextDocuments) > 0 {
		var names []string
		for _, src := range msg.ContextDocuments {
			names = append(names, src.Filename)
		}
		cmd.Printf("  [context: %s]\n", strings.Join(names, ", "))
	}
}
