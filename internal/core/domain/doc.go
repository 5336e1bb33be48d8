// Package domain contains the core entities for the docchat client.
// These types are shared between the guest-mode local persistence layer,
// the context assembler, and the UI adapters.
package domain
