// Package common provides shared constants, types, and utilities
// used across the WG Manager application.
package common

// CredentialStore defines the interface for credential storage.
// Implementations may use the system keyring, encrypted files, etc.
type CredentialStore interface {
	// Store saves a secret under the given name.
	Store(name, secret string) error
	// Get retrieves the secret stored under the given name.
	Get(name string) (string, error)
	// Delete removes the secret stored under the given name.
	Delete(name string) error
}

// MetadataSink receives descriptive key/value metadata for diagnostics.
// Implementations are best-effort: callers ignore failures beyond logging.
type MetadataSink interface {
	// PutMetadata records a key/value pair on the diagnostics report.
	PutMetadata(key, value string) error
}
