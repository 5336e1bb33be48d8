// Package driving defines the interfaces UI adapters (CLI, TUI) call
// into the core: the guest chat/document facade and the session
// lifecycle manager.
package driving
