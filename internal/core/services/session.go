package services

import (
	"time"

	"github.com/docchat-labs/docchat-cli/internal/core/domain"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driven"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driving"
	"github.com/docchat-labs/docchat-cli/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionManager = (*SessionManager)(nil)

// SessionManager enforces the guest session lifecycle: it owns the
// persisted guest flag, records when the UI loses visibility, and
// tears down all local state once the session has been hidden for
// longer than the inactivity limit or the process shuts down.
//
// Storage faults never crash the manager; a failed flag write is a
// no-op and the triggering UI operation surfaces its own error.
type SessionManager struct {
	store driven.GuestStore

	// now is the clock source, injectable for tests.
	now func() time.Time

	// reload is invoked after an expiry teardown so the hosting UI
	// reinitialises from empty state.
	reload func()

	// limit is how long the session may stay hidden.
	limit time.Duration
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithClock overrides the clock source.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) { m.now = now }
}

// WithReload sets the callback invoked after an expiry teardown.
func WithReload(reload func()) SessionOption {
	return func(m *SessionManager) { m.reload = reload }
}

// WithInactivityLimit overrides the expiry threshold.
func WithInactivityLimit(limit time.Duration) SessionOption {
	return func(m *SessionManager) { m.limit = limit }
}

// NewSessionManager creates a session manager over the guest store.
func NewSessionManager(store driven.GuestStore, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		store:  store,
		now:    time.Now,
		reload: func() {},
		limit:  domain.GuestInactivityLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate turns guest mode on and returns the synthetic identity.
// The identity is presentation-only and never reaches a backend.
func (m *SessionManager) Activate() (domain.GuestUser, error) {
	if err := m.store.SetGuestActive(true); err != nil {
		return domain.GuestUser{}, err
	}
	logger.Info("guest mode activated")
	return domain.NewGuestUser(), nil
}

// Deactivate tears down all guest state. Used for explicit sign-out
// and for the switch to authenticated mode. The teardown runs whether
// or not the flag is set, so stray guest data written outside an
// active session is wiped too.
func (m *SessionManager) Deactivate() {
	logger.Info("guest mode deactivated, clearing local state")
	m.store.ClearAll()
}

// Active reports whether guest mode is currently on.
func (m *SessionManager) Active() bool {
	return m.store.GuestActive()
}

// HandleHidden records the moment the UI became non-visible. Ignored
// when guest mode is off.
func (m *SessionManager) HandleHidden() {
	if !m.store.GuestActive() {
		return
	}
	if err := m.store.SetLastActive(m.now()); err != nil {
		logger.Warn("recording hidden timestamp: %v", err)
	}
}

// HandleVisible runs the expiry check when the UI becomes visible
// again. A session hidden for longer than the limit is torn down and
// the reload callback fires; otherwise the hidden timestamp is
// discarded and the session continues.
func (m *SessionManager) HandleVisible() bool {
	if !m.store.GuestActive() {
		return false
	}

	hiddenAt, ok := m.store.LastActive()
	if !ok {
		return false
	}

	elapsed := m.now().Sub(hiddenAt)
	if elapsed > m.limit {
		logger.Info("guest session expired after %s hidden, clearing local state", elapsed)
		m.store.ClearAll()
		m.reload()
		return true
	}

	if err := m.store.ClearLastActive(); err != nil {
		logger.Warn("clearing hidden timestamp: %v", err)
	}
	return false
}

// HandleUnload tears down guest state before the process exits.
// Unconditional for the same reason Deactivate is.
func (m *SessionManager) HandleUnload() {
	logger.Info("shutting down, clearing guest state")
	m.store.ClearAll()
}
