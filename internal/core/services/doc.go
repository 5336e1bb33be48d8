// Package services contains the core guest-mode logic: the context
// assembler, the chat/document facade and the session lifecycle
// manager. Services depend on driven ports and implement the driving
// ports the UI adapters call.
package services
