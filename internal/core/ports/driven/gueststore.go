package driven

import (
	"time"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

// GuestStore is the typed accessor over local storage for the two
// guest-mode collections plus the session flags. It is the sole
// mutator of the underlying slots.
//
// Reads are corruption-tolerant: a missing or undecodable slot is
// treated as an empty collection, never as an error.
type GuestStore interface {
	// ListDocuments returns all documents in insertion order.
	ListDocuments() []domain.Document

	// AddDocument assigns an id and timestamp, appends the document,
	// persists the collection and returns the created record.
	AddDocument(filename, fileType, content string) (domain.Document, error)

	// GetDocument retrieves a document by id.
	GetDocument(id string) (domain.Document, bool)

	// DeleteDocument removes the matching document if present and
	// persists the remainder. It reports whether the storage write
	// succeeded; deleting an absent id is a successful no-op.
	DeleteDocument(id string) bool

	// ListChatHistory returns all chat messages in insertion order.
	ListChatHistory() []domain.ChatMessage

	// AddChatMessage appends a completed conversation turn. The
	// response must be non-empty; callers substitute fallback text
	// before persisting a failed turn.
	AddChatMessage(message, response string, sources []domain.ContextSource) (domain.ChatMessage, error)

	// GuestActive reports whether the guest-mode flag is set.
	GuestActive() bool

	// SetGuestActive sets or clears the guest-mode flag.
	SetGuestActive(active bool) error

	// LastActive returns the persisted last-hidden timestamp, if any.
	LastActive() (time.Time, bool)

	// SetLastActive persists the last-hidden timestamp.
	SetLastActive(t time.Time) error

	// ClearLastActive removes the last-hidden timestamp.
	ClearLastActive() error

	// UsageBytes returns the summed serialized size of both
	// collections as currently persisted.
	UsageBytes() int64

	// ClearAll removes both collections and the guest-mode flag.
	// It is idempotent and never fails.
	ClearAll()
}
