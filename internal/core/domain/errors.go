package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGuestInactive indicates an operation that requires an active
	// guest session was attempted without one.
	ErrGuestInactive = errors.New("guest mode is not active")

	// ErrBackendUnavailable indicates the remote docchat backend could
	// not be reached or returned a non-success response.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrAuthRequired indicates the authenticated API was called
	// without a token, or the token was rejected.
	ErrAuthRequired = errors.New("authentication required")

	// ErrStorageWrite indicates local storage rejected a write
	// (disabled storage, exhausted quota).
	ErrStorageWrite = errors.New("storage write failed")
)
