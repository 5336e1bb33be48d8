// Package driven defines the interfaces the core depends on: local
// key-value storage, the typed guest store built on top of it, and the
// remote docchat backend. Adapters implement these interfaces.
package driven
