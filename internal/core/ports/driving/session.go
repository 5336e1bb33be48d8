package driving

import "github.com/docchat-labs/docchat-cli/internal/core/domain"

// SessionManager owns the guest session lifecycle. The hosting UI
// forwards its visibility and shutdown signals to the handler methods;
// the manager decides when local state must be torn down.
type SessionManager interface {
	// Activate turns guest mode on and returns the synthetic identity.
	Activate() (domain.GuestUser, error)

	// Deactivate tears down all guest state (explicit sign-out).
	Deactivate()

	// Active reports whether guest mode is currently on.
	Active() bool

	// HandleHidden records the moment the UI became non-visible.
	HandleHidden()

	// HandleVisible checks the elapsed hidden time and tears down
	// expired sessions. Reports whether a teardown happened, in which
	// case the UI must reinitialise from empty state.
	HandleVisible() bool

	// HandleUnload tears down guest state before the process exits.
	HandleUnload()
}
