package driving

import (
	"context"
	"io"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

// GuestService is the guest-mode chat and document facade.
//
// Backend failures never escape SendMessage or UploadDocument as
// errors; they degrade to inline fallback content so the conversation
// and document list remain usable.
type GuestService interface {
	// SendMessage assembles context per the given mode, requests an
	// assistant response and persists the completed turn. On backend
	// failure the persisted response is apologetic fallback text.
	SendMessage(ctx context.Context, message string, mode domain.ContextMode, selected []string) (domain.ChatMessage, error)

	// UploadDocument extracts text remotely and stores the document.
	// When extraction fails, text-like files fall back to a direct
	// read and anything else is stored with bracketed error content.
	UploadDocument(ctx context.Context, filename, fileType string, file io.Reader) (domain.Document, error)

	// DeleteDocument removes a document. Reports storage write
	// success; an absent id is a successful no-op.
	DeleteDocument(id string) bool

	// Documents lists all stored documents in insertion order.
	Documents() []domain.Document

	// Document retrieves a single document by id.
	Document(id string) (domain.Document, bool)

	// History lists the chat history in insertion order.
	History() []domain.ChatMessage

	// StorageUsage returns a human-readable estimate of local storage
	// consumed by both collections.
	StorageUsage() string
}
