// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/docchat-labs/docchat-cli/internal/core/domain"
)

// ResponseReceived carries a completed conversation turn back to the
// model.
type ResponseReceived struct {
	Message domain.ChatMessage
}

// SessionExpired signals that the guest session lapsed while the TUI
// was open.
type SessionExpired struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
