package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/guestkv"
	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

// fakeBackend is a scriptable guest backend for facade tests.
type fakeBackend struct {
	response    string
	chatErr     error
	extracted   string
	extractErr  error
	lastMessage string
	lastContext string
	lastSources []domain.ContextSource
}

func (b *fakeBackend) GenerateResponse(_ context.Context, message, contextBlob string, sources []domain.ContextSource) (string, error) {
	b.lastMessage = message
	b.lastContext = contextBlob
	b.lastSources = sources
	if b.chatErr != nil {
		return "", b.chatErr
	}
	return b.response, nil
}

func (b *fakeBackend) ExtractText(_ context.Context, _ string, file io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, file)
	if b.extractErr != nil {
		return "", b.extractErr
	}
	return b.extracted, nil
}

func newGuestFixture() (*GuestService, *guestkv.Store, *fakeBackend) {
	store := guestkv.NewStore(memory.NewKeyValueStore())
	backend := &fakeBackend{response: "Assistant reply."}
	return NewGuestService(store, backend), store, backend
}

func TestGuestService_SendMessage_NoContext(t *testing.T) {
	svc, _, backend := newGuestFixture()

	msg, err := svc.SendMessage(context.Background(), "hello", domain.ContextNone, nil)
	require.NoError(t, err)

	assert.Equal(t, "hello", msg.Message)
	assert.Equal(t, "Assistant reply.", msg.Response)
	assert.Empty(t, msg.ContextDocuments)
	assert.Empty(t, backend.lastContext)
}

func TestGuestService_SendMessage_AllContext(t *testing.T) {
	svc, store, backend := newGuestFixture()

	_, err := store.AddDocument("notes.txt", "text/plain", "hello world")
	require.NoError(t, err)

	msg, err := svc.SendMessage(context.Background(), "summarize", domain.ContextAll, nil)
	require.NoError(t, err)

	require.Len(t, msg.ContextDocuments, 1)
	assert.Equal(t, "notes.txt", msg.ContextDocuments[0].Filename)
	assert.Contains(t, backend.lastContext, "[Document: notes.txt]")
	assert.Contains(t, backend.lastContext, "hello world")
}

func TestGuestService_SendMessage_SelectedContext(t *testing.T) {
	svc, store, backend := newGuestFixture()

	wanted, err := store.AddDocument("a.txt", "text/plain", "alpha")
	require.NoError(t, err)
	_, err = store.AddDocument("b.txt", "text/plain", "beta")
	require.NoError(t, err)

	msg, err := svc.SendMessage(context.Background(), "question", domain.ContextSelected, []string{wanted.ID})
	require.NoError(t, err)

	require.Len(t, msg.ContextDocuments, 1)
	assert.Equal(t, "a.txt", msg.ContextDocuments[0].Filename)
	assert.NotContains(t, backend.lastContext, "beta")
}

func TestGuestService_SendMessage_BackendFailure_PersistsFallback(t *testing.T) {
	svc, store, backend := newGuestFixture()
	backend.chatErr = errors.New("connection refused")

	msg, err := svc.SendMessage(context.Background(), "hello", domain.ContextNone, nil)
	require.NoError(t, err)

	assert.Equal(t, FallbackResponse, msg.Response)

	// The failed turn still lands in history with a non-empty response.
	history := store.ListChatHistory()
	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0].Response)
}

func TestGuestService_SendMessage_EmptyBackendResponse_Fallback(t *testing.T) {
	svc, _, backend := newGuestFixture()
	backend.response = "   "

	msg, err := svc.SendMessage(context.Background(), "hello", domain.ContextNone, nil)
	require.NoError(t, err)

	assert.Equal(t, FallbackResponse, msg.Response)
}

func TestGuestService_SendMessage_EmptyMessage(t *testing.T) {
	svc, _, _ := newGuestFixture()

	_, err := svc.SendMessage(context.Background(), "   ", domain.ContextNone, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGuestService_SendMessage_InvalidMode(t *testing.T) {
	svc, _, _ := newGuestFixture()

	_, err := svc.SendMessage(context.Background(), "hello", domain.ContextMode("bogus"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGuestService_UploadDocument_Extracted(t *testing.T) {
	svc, store, backend := newGuestFixture()
	backend.extracted = "extracted body"

	doc, err := svc.UploadDocument(context.Background(), "report.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.FileType)
	assert.Equal(t, "extracted body", doc.Content)
	assert.Len(t, store.ListDocuments(), 1)
}

func TestGuestService_UploadDocument_ExtractionFails_TextFallback(t *testing.T) {
	svc, _, backend := newGuestFixture()
	backend.extractErr = errors.New("extraction service down")

	doc, err := svc.UploadDocument(context.Background(), "notes.txt", "text/plain", strings.NewReader("plain body"))
	require.NoError(t, err)

	assert.Equal(t, "plain body", doc.Content)
}

func TestGuestService_UploadDocument_ExtractionFails_BinaryFallback(t *testing.T) {
	svc, _, backend := newGuestFixture()
	backend.extractErr = errors.New("extraction service down")

	binary := string([]byte{0x00, 0x01, 0xFF, 0xFE})
	doc, err := svc.UploadDocument(context.Background(), "image.png", "image/png", strings.NewReader(binary))
	require.NoError(t, err)

	assert.Equal(t, "[Could not extract text from image.png]", doc.Content)
}

func TestGuestService_UploadDocument_DetectsFileType(t *testing.T) {
	svc, _, backend := newGuestFixture()
	backend.extracted = "body"

	doc, err := svc.UploadDocument(context.Background(), "notes.txt", "", strings.NewReader("body"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.FileType)

	doc, err = svc.UploadDocument(context.Background(), "mystery.zzz9", "", strings.NewReader("body"))
	require.NoError(t, err)
	assert.Equal(t, "unknown", doc.FileType)
}

func TestGuestService_UploadDocument_EmptyFilename(t *testing.T) {
	svc, _, _ := newGuestFixture()

	_, err := svc.UploadDocument(context.Background(), "", "text/plain", strings.NewReader("body"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGuestService_DeleteDocument(t *testing.T) {
	svc, store, _ := newGuestFixture()

	doc, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	assert.True(t, svc.DeleteDocument(doc.ID))
	assert.Empty(t, svc.Documents())

	// Deleting again is still a success.
	assert.True(t, svc.DeleteDocument(doc.ID))
}

func TestGuestService_StorageUsage(t *testing.T) {
	svc, store, _ := newGuestFixture()

	assert.Equal(t, "0 bytes", svc.StorageUsage())

	_, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	usage := svc.StorageUsage()
	assert.True(t, strings.HasSuffix(usage, "bytes") || strings.HasSuffix(usage, "KB"))
	assert.NotEqual(t, "0 bytes", usage)
}

// Full guest flow: activate, upload, chat with full context.
func TestGuestFlow_UploadThenChat(t *testing.T) {
	store := guestkv.NewStore(memory.NewKeyValueStore())
	backend := &fakeBackend{response: "Summary of notes.", extracted: "hello"}
	svc := NewGuestService(store, backend)
	manager := NewSessionManager(store)

	_, err := manager.Activate()
	require.NoError(t, err)

	_, err = svc.UploadDocument(context.Background(), "notes.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)

	msg, err := svc.SendMessage(context.Background(), "summarize", domain.ContextAll, nil)
	require.NoError(t, err)

	history := svc.History()
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
	require.Len(t, history[0].ContextDocuments, 1)
	assert.Equal(t, "notes.txt", history[0].ContextDocuments[0].Filename)
}
