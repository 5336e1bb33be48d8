package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is a guest-mode document held entirely in local storage.
// Content is the extracted plain text, not the original file bytes.
type Document struct {
	// ID is the unique identifier, assigned at creation.
	ID string `json:"id"`

	// Filename is the display name of the uploaded file.
	Filename string `json:"filename"`

	// FileType is a MIME-type-like string, or "unknown".
	FileType string `json:"file_type"`

	// Content is the extracted plain-text body. May be empty but is
	// always present.
	Content string `json:"content"`

	// CreatedAt is when the document was stored locally.
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is a completed guest-mode conversation turn. A message is
// only persisted once a response is available, so Response is never
// empty in storage.
type ChatMessage struct {
	// ID is the unique identifier, assigned at creation.
	ID string `json:"id"`

	// Message is the user-submitted text.
	Message string `json:"message"`

	// Response is the assistant text, or fallback text on failure.
	Response string `json:"response"`

	// ContextDocuments lists the documents that contributed context.
	// Omitted when the message was sent without context.
	ContextDocuments []ContextSource `json:"context_documents,omitempty"`

	// CreatedAt is when the turn was stored locally.
	CreatedAt time.Time `json:"created_at"`
}

// ContextSource identifies a document that contributed to an AI
// response's context.
type ContextSource struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// ContextMode selects which documents are included as prompt context.
type ContextMode string

// Context modes.
const (
	// ContextNone sends the message without any document context.
	ContextNone ContextMode = "none"

	// ContextSelected includes only an explicit set of documents.
	ContextSelected ContextMode = "selected"

	// ContextAll includes every stored document.
	ContextAll ContextMode = "all"
)

// Valid reports whether the mode is one of the known context modes.
func (m ContextMode) Valid() bool {
	switch m {
	case ContextNone, ContextSelected, ContextAll:
		return true
	}
	return false
}

// NewID generates a record identifier. The wall-clock prefix keeps ids
// roughly sortable by creation time; the random suffix prevents
// collisions when records are created within the same clock tick.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
