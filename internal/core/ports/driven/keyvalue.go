package driven

// Well-known storage keys. These slot names are part of the persisted
// contract and must not change between releases.
const (
	KeyGuestMode       = "guestMode"
	KeyGuestDocuments  = "guestDocuments"
	KeyGuestChat       = "guestChatHistory"
	KeyGuestLastActive = "guestModeLastActive"
	KeyAuthToken       = "token"
	KeyAuthUser        = "user"
)

// KeyValueStore is a flat string-to-string storage slot, modelled on
// browser local storage semantics: reads never fail, writes may.
// Implementations are shared process-wide; concurrent writers are
// last-write-wins.
type KeyValueStore interface {
	// Get returns the value for a key and whether it was present.
	Get(key string) (string, bool)

	// Set overwrites the full value for a key.
	Set(key, value string) error

	// Delete removes a key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Close releases any resources held by the store.
	Close() error
}
