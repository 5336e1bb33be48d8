package services

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driving"
	"github.com/docchat-labs/docchat-cli/internal/logger"
)

// Ensure GuestService implements the interface.
var _ driving.GuestService = (*GuestService)(nil)

// FallbackResponse is persisted as the assistant response when the
// backend cannot be reached. Keeps the non-empty-response invariant
// intact on failure.
const FallbackResponse = "Sorry, I couldn't reach the assistant. Please try again."

// GuestService is the guest-mode chat and document facade. It composes
// the local store, the context assembler and the remote backend.
type GuestService struct {
	store   driven.GuestStore
	backend driven.GuestBackend
}

// NewGuestService creates a guest service.
func NewGuestService(store driven.GuestStore, backend driven.GuestBackend) *GuestService {
	return &GuestService{
		store:   store,
		backend: backend,
	}
}

// SendMessage assembles context per the given mode, requests an
// assistant response and persists the completed turn. The turn is
// written to history exactly once, with the real response or with
// fallback text when the backend fails.
func (s *GuestService) SendMessage(ctx context.Context, message string, mode domain.ContextMode, selected []string) (domain.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return domain.ChatMessage{}, domain.ErrInvalidInput
	}
	if !mode.Valid() {
		return domain.ChatMessage{}, domain.ErrInvalidInput
	}

	blob, sources := AssembleContext(s.store.ListDocuments(), mode, selected)
	logger.Debug("sending message with %d context documents", len(sources))

	response, err := s.backend.GenerateResponse(ctx, message, blob, sources)
	if err != nil || strings.TrimSpace(response) == "" {
		if err != nil {
			logger.Warn("chat backend failed, persisting fallback: %v", err)
		}
		response = FallbackResponse
	}

	return s.store.AddChatMessage(message, response, sources)
}

// UploadDocument extracts text from the file and stores the document.
// Extraction failures degrade rather than fail the upload: text-like
// files fall back to a direct read, anything else is stored with
// bracketed error content.
func (s *GuestService) UploadDocument(ctx context.Context, filename, fileType string, file io.Reader) (domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return domain.Document{}, domain.ErrInvalidInput
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.Document{}, err
	}

	if fileType == "" {
		fileType = detectFileType(filename)
	}

	content, err := s.backend.ExtractText(ctx, filename, bytes.NewReader(data))
	if err != nil {
		logger.Warn("text extraction failed for %s: %v", filename, err)
		if isTextLike(fileType, data) {
			content = string(data)
		} else {
			content = "[Could not extract text from " + filename + "]"
		}
	}

	return s.store.AddDocument(filename, fileType, content)
}

// DeleteDocument removes a document. Reports storage write success; an
// absent id is a successful no-op.
func (s *GuestService) DeleteDocument(id string) bool {
	return s.store.DeleteDocument(id)
}

// Documents lists all stored documents in insertion order.
func (s *GuestService) Documents() []domain.Document {
	return s.store.ListDocuments()
}

// Document retrieves a single document by id.
func (s *GuestService) Document(id string) (domain.Document, bool) {
	return s.store.GetDocument(id)
}

// History lists the chat history in insertion order.
func (s *GuestService) History() []domain.ChatMessage {
	return s.store.ListChatHistory()
}

// StorageUsage returns a human-readable estimate of local storage
// consumed by both collections.
func (s *GuestService) StorageUsage() string {
	return domain.FormatByteSize(s.store.UsageBytes())
}

// detectFileType derives a MIME type from the filename extension,
// falling back to "unknown".
func detectFileType(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "unknown"
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "unknown"
	}
	// Strip charset parameters; stored types are bare MIME types.
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return mimeType
}

// isTextLike reports whether the file can be stored as-is when remote
// extraction is unavailable.
func isTextLike(fileType string, data []byte) bool {
	if strings.HasPrefix(fileType, "text/") {
		return true
	}
	return utf8.Valid(data) && !bytes.ContainsRune(data, 0)
}
