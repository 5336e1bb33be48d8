// Package api provides HTTP clients for the remote docchat backend:
// the guest contract (chat, text extraction) and the authenticated
// contract (accounts, server-side documents and history).
package api
