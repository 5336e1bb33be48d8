package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/guestkv"
	"github.com/docchat-labs/docchat-cli/internal/adapters/driven/storage/memory"
)

// fakeClock is an adjustable clock for lifecycle tests.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newSessionFixture(t *testing.T) (*SessionManager, *guestkv.Store, *fakeClock, *int) {
	t.Helper()

	store := guestkv.NewStore(memory.NewKeyValueStore())
	clock := &fakeClock{current: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	reloads := 0

	manager := NewSessionManager(store,
		WithClock(clock.now),
		WithReload(func() { reloads++ }),
	)
	return manager, store, clock, &reloads
}

func TestSessionManager_Activate(t *testing.T) {
	manager, store, _, _ := newSessionFixture(t)

	user, err := manager.Activate()
	require.NoError(t, err)

	assert.Equal(t, "guest", user.ID)
	assert.Equal(t, "Guest User", user.Name)
	assert.True(t, manager.Active())
	assert.True(t, store.GuestActive())
}

func TestSessionManager_Activate_StorageFault(t *testing.T) {
	kv := memory.NewKeyValueStore()
	store := guestkv.NewStore(kv)
	manager := NewSessionManager(store)

	kv.FailWrites(true)

	_, err := manager.Activate()
	assert.Error(t, err)
	assert.False(t, manager.Active())
}

func TestSessionManager_Deactivate_ClearsState(t *testing.T) {
	manager, store, _, _ := newSessionFixture(t)

	_, err := manager.Activate()
	require.NoError(t, err)
	_, err = store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)
	_, err = store.AddChatMessage("hi", "hello", nil)
	require.NoError(t, err)

	manager.Deactivate()

	assert.False(t, manager.Active())
	assert.Empty(t, store.ListDocuments())
	assert.Empty(t, store.ListChatHistory())
}

func TestSessionManager_Deactivate_WithoutActivation_StillClears(t *testing.T) {
	manager, store, _, _ := newSessionFixture(t)

	// State written without Activate must not be exempt from teardown;
	// nothing in local storage may outlive a deactivate.
	_, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)
	_, err = store.AddChatMessage("hi", "reply", nil)
	require.NoError(t, err)

	manager.Deactivate()

	assert.Empty(t, store.ListDocuments())
	assert.Empty(t, store.ListChatHistory())
}

func TestSessionManager_HandleUnload_WithoutActivation_StillClears(t *testing.T) {
	manager, store, _, _ := newSessionFixture(t)

	_, err := store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	manager.HandleUnload()

	assert.Empty(t, store.ListDocuments())
}

func TestSessionManager_HiddenVisible_Expired(t *testing.T) {
	manager, store, clock, reloads := newSessionFixture(t)

	_, err := manager.Activate()
	require.NoError(t, err)
	_, err = store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)
	_, err = store.AddChatMessage("hi", "hello", nil)
	require.NoError(t, err)

	manager.HandleHidden()
	clock.advance(31 * time.Minute)
	expired := manager.HandleVisible()

	assert.True(t, expired)
	assert.Equal(t, 1, *reloads)
	assert.False(t, manager.Active())
	assert.Empty(t, store.ListDocuments())
	assert.Empty(t, store.ListChatHistory())
}

func TestSessionManager_HiddenVisible_WithinLimit(t *testing.T) {
	manager, store, clock, reloads := newSessionFixture(t)

	_, err := manager.Activate()
	require.NoError(t, err)
	_, err = store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	manager.HandleHidden()
	clock.advance(10 * time.Minute)
	expired := manager.HandleVisible()

	assert.False(t, expired)
	assert.Zero(t, *reloads)
	assert.True(t, manager.Active())
	assert.Len(t, store.ListDocuments(), 1)

	// The hidden timestamp is consumed so a later resume does not see
	// a stale value.
	_, ok := store.LastActive()
	assert.False(t, ok)
}

func TestSessionManager_HandleVisible_NoHiddenTimestamp(t *testing.T) {
	manager, _, _, reloads := newSessionFixture(t)

	_, err := manager.Activate()
	require.NoError(t, err)

	expired := manager.HandleVisible()

	assert.False(t, expired)
	assert.Zero(t, *reloads)
	assert.True(t, manager.Active())
}

func TestSessionManager_HandleHidden_Inactive_NoOp(t *testing.T) {
	manager, store, _, _ := newSessionFixture(t)

	manager.HandleHidden()

	_, ok := store.LastActive()
	assert.False(t, ok)
}

func TestSessionManager_HandleUnload(t *testing.T) {
	manager, store, _, _ := newSessionFixture(t)

	_, err := manager.Activate()
	require.NoError(t, err)
	_, err = store.AddDocument("notes.txt", "text/plain", "hello")
	require.NoError(t, err)

	manager.HandleUnload()

	assert.False(t, store.GuestActive())
	assert.Empty(t, store.ListDocuments())
}

func TestSessionManager_HandleHidden_StorageFault_NoPanic(t *testing.T) {
	kv := memory.NewKeyValueStore()
	store := guestkv.NewStore(kv)
	manager := NewSessionManager(store)

	_, err := manager.Activate()
	require.NoError(t, err)

	kv.FailWrites(true)
	manager.HandleHidden()

	// The fault is swallowed; guest mode stays on.
	assert.True(t, manager.Active())
}

func TestSessionManager_CustomInactivityLimit(t *testing.T) {
	store := guestkv.NewStore(memory.NewKeyValueStore())
	clock := &fakeClock{current: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	manager := NewSessionManager(store,
		WithClock(clock.now),
		WithInactivityLimit(5*time.Minute),
	)

	_, err := manager.Activate()
	require.NoError(t, err)

	manager.HandleHidden()
	clock.advance(6 * time.Minute)

	assert.True(t, manager.HandleVisible())
	assert.False(t, manager.Active())
}
