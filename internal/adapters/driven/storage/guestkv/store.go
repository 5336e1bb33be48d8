// Package guestkv is the typed accessor over key-value storage for the
// guest-mode collections. It owns the document and chat-history slots
// exclusively; no other component touches those keys.
//
// Writes serialize and overwrite a whole slot. That makes each write
// atomic from the accessor's point of view at O(collection size) cost,
// which is acceptable at guest-session scale.
package guestkv

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
	"github.com/docchat-labs/docchat-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.GuestStore = (*Store)(nil)

// Store is the key-value backed implementation of driven.GuestStore.
type Store struct {
	kv driven.KeyValueStore
}

// NewStore creates a guest store over the given key-value backend.
func NewStore(kv driven.KeyValueStore) *Store {
	return &Store{kv: kv}
}

// ListDocuments returns all documents in insertion order. A missing or
// corrupt slot reads as empty.
func (s *Store) ListDocuments() []domain.Document {
	var docs []domain.Document
	if !s.readSlot(driven.KeyGuestDocuments, &docs) {
		return nil
	}
	return docs
}

// AddDocument assigns an id and timestamp, appends and persists.
func (s *Store) AddDocument(filename, fileType, content string) (domain.Document, error) {
	doc := domain.Document{
		ID:        domain.NewID(),
		Filename:  filename,
		FileType:  fileType,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	docs := append(s.ListDocuments(), doc)
	if err := s.writeSlot(driven.KeyGuestDocuments, docs); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// GetDocument retrieves a document by id.
func (s *Store) GetDocument(id string) (domain.Document, bool) {
	for _, doc := range s.ListDocuments() {
		if doc.ID == id {
			return doc, true
		}
	}
	return domain.Document{}, false
}

// DeleteDocument removes the matching document if present and persists
// the filtered collection. It reports whether the write succeeded;
// deleting an absent id is a successful no-op.
func (s *Store) DeleteDocument(id string) bool {
	docs := s.ListDocuments()
	filtered := docs[:0]
	for _, doc := range docs {
		if doc.ID != id {
			filtered = append(filtered, doc)
		}
	}

	if err := s.writeSlot(driven.KeyGuestDocuments, filtered); err != nil {
		logger.Warn("deleting document %s: %v", id, err)
		return false
	}
	return true
}

// ListChatHistory returns all chat messages in insertion order.
func (s *Store) ListChatHistory() []domain.ChatMessage {
	var msgs []domain.ChatMessage
	if !s.readSlot(driven.KeyGuestChat, &msgs) {
		return nil
	}
	return msgs
}

// AddChatMessage appends a completed conversation turn and persists.
func (s *Store) AddChatMessage(message, response string, sources []domain.ContextSource) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{
		ID:               domain.NewID(),
		Message:          message,
		Response:         response,
		ContextDocuments: sources,
		CreatedAt:        time.Now().UTC(),
	}

	msgs := append(s.ListChatHistory(), msg)
	if err := s.writeSlot(driven.KeyGuestChat, msgs); err != nil {
		return domain.ChatMessage{}, err
	}
	return msg, nil
}

// GuestActive reports whether the guest-mode flag is set.
func (s *Store) GuestActive() bool {
	val, ok := s.kv.Get(driven.KeyGuestMode)
	return ok && val == "true"
}

// SetGuestActive sets or clears the guest-mode flag. The flag is a
// literal "true" when set and absent when cleared, never "false".
func (s *Store) SetGuestActive(active bool) error {
	if active {
		return s.kv.Set(driven.KeyGuestMode, "true")
	}
	return s.kv.Delete(driven.KeyGuestMode)
}

// LastActive returns the persisted last-hidden timestamp, if any.
func (s *Store) LastActive() (time.Time, bool) {
	val, ok := s.kv.Get(driven.KeyGuestLastActive)
	if !ok {
		return time.Time{}, false
	}

	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		logger.Warn("slot %s holds %q, ignoring", driven.KeyGuestLastActive, val)
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// SetLastActive persists the last-hidden timestamp as a millisecond
// epoch string.
func (s *Store) SetLastActive(t time.Time) error {
	return s.kv.Set(driven.KeyGuestLastActive, strconv.FormatInt(t.UnixMilli(), 10))
}

// ClearLastActive removes the last-hidden timestamp.
func (s *Store) ClearLastActive() error {
	return s.kv.Delete(driven.KeyGuestLastActive)
}

// UsageBytes returns the summed serialized size of both collections.
func (s *Store) UsageBytes() int64 {
	var total int64
	for _, key := range []string{driven.KeyGuestDocuments, driven.KeyGuestChat} {
		if val, ok := s.kv.Get(key); ok {
			total += int64(len(val))
		}
	}
	return total
}

// ClearAll removes both collections, the guest-mode flag and the
// last-hidden timestamp. Idempotent; delete failures are logged and
// ignored so teardown always completes.
func (s *Store) ClearAll() {
	for _, key := range []string{
		driven.KeyGuestDocuments,
		driven.KeyGuestChat,
		driven.KeyGuestMode,
		driven.KeyGuestLastActive,
	} {
		if err := s.kv.Delete(key); err != nil {
			logger.Warn("clearing slot %s: %v", key, err)
		}
	}
}

// readSlot decodes a JSON slot into dst. Reports false for a missing
// or corrupt slot; corruption is logged, never surfaced.
func (s *Store) readSlot(key string, dst any) bool {
	val, ok := s.kv.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		logger.Warn("slot %s corrupt, treating as empty: %v", key, err)
		return false
	}
	return true
}

// writeSlot serializes value and overwrites the whole slot. Rejected
// writes surface as domain.ErrStorageWrite so callers can distinguish
// storage faults from input errors.
func (s *Store) writeSlot(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}
