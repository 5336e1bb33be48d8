package guestkv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/docchat-labs/docchat-cli/internal/core/domain"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
)

func newTestStore() (*Store, *memory.KeyValueStore) {
	kv := memory.NewKeyValueStore()
	return NewStore(kv), kv
}

func TestStore_ListDocuments_Empty(t *testing.T) {
	store, _ := newTestStore()

	docs := store.ListDocuments()
	assert.Empty(t, docs)
}

func TestStore_AddDocument(t *testing.T) {
	store, _ := newTestStore()

	doc, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, "text/plain", doc.FileType)
	assert.Equal(t, "hello", doc.Content)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestStore_AddDocument_InsertionOrder(t *testing.T) {
	store, _ := newTestStore()

	first, err := store.AddDocument("a.txt", "text/plain", "a")
	require.NoError(t, err)
	second, err := store.AddDocument("b.txt", "text/plain", "b")
	require.NoError(t, err)
	third, err := store.AddDocument("c.txt", "text/plain", "c")
	require.NoError(t, err)

	docs := store.ListDocuments()
	require.Len(t, docs, 3)
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
	assert.Equal(t, third.ID, docs[2].ID)
}

func TestStore_AddDocument_UniqueIDs(t *testing.T) {
	store, _ := newTestStore()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		doc, err := store.AddDocument("doc.txt", "text/plain", "body")
		require.NoError(t, err)
		assert.False(t, seen[doc.ID], "duplicate id %s", doc.ID)
		seen[doc.ID] = true
	}
}

func TestStore_AddDocument_WriteFailure(t *testing.T) {
	store, kv := newTestStore()
	kv.FailWrites(true)

	_, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
}

func TestStore_GetDocument(t *testing.T) {
	store, _ := newTestStore()

	created, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	doc, ok := store.GetDocument(created.ID)
	require.True(t, ok)
	assert.Equal(t, "notes.txt", doc.Filename)

	_, ok = store.GetDocument("missing")
	assert.False(t, ok)
}

func TestStore_DeleteDocument(t *testing.T) {
	store, _ := newTestStore()

	doc, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)
	keep, err := store.AddDocument("keep.txt", "text/plain", "keep")
	require.NoError(t, err)

	ok := store.DeleteDocument(doc.ID)
	assert.True(t, ok)

	docs := store.ListDocuments()
	require.Len(t, docs, 1)
	assert.Equal(t, keep.ID, docs[0].ID)
}

func TestStore_DeleteDocument_NonExistent(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	// A missing id is a no-op success and leaves the collection alone.
	ok := store.DeleteDocument("missing")
	assert.True(t, ok)
	assert.Len(t, store.ListDocuments(), 1)
}

func TestStore_DeleteDocument_WriteFailure(t *testing.T) {
	store, kv := newTestStore()

	doc, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	kv.FailWrites(true)
	ok := store.DeleteDocument(doc.ID)
	assert.False(t, ok)
}

func TestStore_CorruptDocumentsSlot_ReadsEmpty(t *testing.T) {
	store, kv := newTestStore()
	require.NoError(t, kv.Set(driven.KeyGuestDocuments, "{corrupt"))

	docs := store.ListDocuments()
	assert.Empty(t, docs)
}

func TestStore_AddChatMessage(t *testing.T) {
	store, _ := newTestStore()

	sources := []domain.ContextSource{{ID: "1", Filename: "notes.txt"}}
	msg, err := store.AddChatMessage("summarize", "Here is a summary.", sources)
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "summarize", msg.Message)
	assert.Equal(t, "Here is a summary.", msg.Response)
	require.Len(t, msg.ContextDocuments, 1)
	assert.Equal(t, "notes.txt", msg.ContextDocuments[0].Filename)
}

func TestStore_ListChatHistory_InsertionOrder(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.AddChatMessage("first", "one", nil)
	require.NoError(t, err)
	_, err = store.AddChatMessage("second", "two", nil)
	require.NoError(t, err)

	msgs := store.ListChatHistory()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "second", msgs[1].Message)
}

func TestStore_ChatMessage_NoContextOmitted(t *testing.T) {
	store, kv := newTestStore()

	_, err := store.AddChatMessage("hi", "hello", nil)
	require.NoError(t, err)

	raw, ok := kv.Get(driven.KeyGuestChat)
	require.True(t, ok)
	assert.NotContains(t, raw, "context_documents")
}

func TestStore_CorruptChatSlot_ReadsEmpty(t *testing.T) {
	store, kv := newTestStore()
	require.NoError(t, kv.Set(driven.KeyGuestChat, "not json at all"))

	msgs := store.ListChatHistory()
	assert.Empty(t, msgs)
}

func TestStore_GuestActive(t *testing.T) {
	store, kv := newTestStore()

	assert.False(t, store.GuestActive())

	require.NoError(t, store.SetGuestActive(true))
	assert.True(t, store.GuestActive())

	// The flag is stored as a literal "true".
	val, ok := kv.Get(driven.KeyGuestMode)
	require.True(t, ok)
	assert.Equal(t, "true", val)

	require.NoError(t, store.SetGuestActive(false))
	assert.False(t, store.GuestActive())

	// Clearing removes the key rather than writing "false".
	_, ok = kv.Get(driven.KeyGuestMode)
	assert.False(t, ok)
}

func TestStore_LastActive_RoundTrip(t *testing.T) {
	store, _ := newTestStore()

	_, ok := store.LastActive()
	assert.False(t, ok)

	stamp := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetLastActive(stamp))

	got, ok := store.LastActive()
	require.True(t, ok)
	assert.Equal(t, stamp.UnixMilli(), got.UnixMilli())

	require.NoError(t, store.ClearLastActive())
	_, ok = store.LastActive()
	assert.False(t, ok)
}

func TestStore_LastActive_Garbage(t *testing.T) {
	store, kv := newTestStore()
	require.NoError(t, kv.Set(driven.KeyGuestLastActive, "yesterday"))

	_, ok := store.LastActive()
	assert.False(t, ok)
}

func TestStore_UsageBytes(t *testing.T) {
	store, kv := newTestStore()

	assert.Zero(t, store.UsageBytes())

	_, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)
	_, err = store.AddChatMessage("hi", "hello", nil)
	require.NoError(t, err)

	docsRaw, _ := kv.Get(driven.KeyGuestDocuments)
	chatRaw, _ := kv.Get(driven.KeyGuestChat)
	assert.Equal(t, int64(len(docsRaw)+len(chatRaw)), store.UsageBytes())
}

func TestStore_ClearAll(t *testing.T) {
	store, kv := newTestStore()

	_, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)
	_, err = store.AddChatMessage("hi", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, store.SetGuestActive(true))
	require.NoError(t, store.SetLastActive(time.Now()))

	store.ClearAll()

	assert.Empty(t, store.ListDocuments())
	assert.Empty(t, store.ListChatHistory())
	assert.False(t, store.GuestActive())
	_, ok := store.LastActive()
	assert.False(t, ok)
	assert.Zero(t, kv.Len())
}

func TestStore_ClearAll_Idempotent(t *testing.T) {
	store, _ := newTestStore()

	store.ClearAll()
	store.ClearAll()

	assert.Empty(t, store.ListDocuments())
}
