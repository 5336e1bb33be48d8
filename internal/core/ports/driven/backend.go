package driven

import (
	"context"
	"io"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

// GuestBackend is the remote guest-mode contract. The backend owns AI
// inference and text extraction; this client side only ships requests
// and reads responses.
type GuestBackend interface {
	// GenerateResponse sends a chat message with its assembled context
	// and returns the assistant response text.
	GenerateResponse(ctx context.Context, message, contextBlob string, sources []domain.ContextSource) (string, error)

	// ExtractText uploads a file and returns its extracted plain text.
	ExtractText(ctx context.Context, filename string, file io.Reader) (string, error)
}
