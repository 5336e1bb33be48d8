package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc"},
	Short:   "Manage documents",
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a document's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	path := args[0]

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	filename := filepath.Base(path)

	if signedIn() {
		if authClient == nil {
			return errors.New("auth client not configured")
		}
		doc, err := authClient.UploadDocument(context.Background(), filename, file)
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", filename, err)
		}
		cmd.Printf("Uploaded %s (id %d)\n", doc.Filename, doc.ID)
		return nil
	}

	if err := requireGuest(); err != nil {
		return err
	}

	// Type detection is the service's job; it normalises charset
	// parameters away and falls back to "unknown".
	doc, err := guestService.UploadDocument(context.Background(), filename, "", file)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	cmd.Printf("Uploaded %s (id %s)\n", doc.Filename, doc.ID)
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if signedIn() {
		if authClient == nil {
			return errors.New("auth client not configured")
		}
		docs, err := authClient.ListDocuments(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		if len(docs) == 0 {
			cmd.Println("No documents.")
			return nil
		}
		for _, doc := range docs {
			cmd.Printf("%d\t%s\t%s\n", doc.ID, doc.Filename, doc.FileType)
		}
		return nil
	}

	if err := requireGuest(); err != nil {
		return err
	}

	docs := guestService.Documents()
	if len(docs) == 0 {
		cmd.Println("No documents.")
		return nil
	}
	for _, doc := range docs {
		cmd.Printf("%s\t%s\t%s\n", doc.ID, doc.Filename, doc.FileType)
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	id := args[0]

	if signedIn() {
		if authClient == nil {
			return errors.New("auth client not configured")
		}
		numeric, err := strconv.Atoi(id)
		if err != nil {
			return fmt.Errorf("remote document ids are numeric, got %q", id)
		}
		doc, err := authClient.GetDocument(context.Background(), numeric)
		if err != nil {
			return fmt.Errorf("failed to fetch document %s: %w", id, err)
		}
		cmd.Printf("%s (%s)\n\n%s\n", doc.Filename, doc.FileType, doc.Content)
		return nil
	}

	if err := requireGuest(); err != nil {
		return err
	}

	doc, ok := guestService.Document(id)
	if !ok {
		return fmt.Errorf("%w: no document with id %s", domain.ErrNotFound, id)
	}
	cmd.Printf("%s (%s)\n\n%s\n", doc.Filename, doc.FileType, doc.Content)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	if signedIn() {
		if authClient == nil {
			return errors.New("auth client not configured")
		}
		numeric, err := strconv.Atoi(id)
		if err != nil {
			return fmt.Errorf("remote document ids are numeric, got %q", id)
		}
		if err := authClient.DeleteDocument(context.Background(), numeric); err != nil {
			return fmt.Errorf("failed to delete document %s: %w", id, err)
		}
		cmd.Printf("Deleted document %s\n", id)
		return nil
	}

	if err := requireGuest(); err != nil {
		return err
	}

	if !guestService.DeleteDocument(id) {
		return fmt.Errorf("failed to delete document %s", id)
	}
	cmd.Printf("Deleted document %s\n", id)
	return nil
}
