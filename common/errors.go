// Package common provides shared constants, types, and utilities
// used across the WG Manager application.
package common

import "errors"

// Sentinel errors for core operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Tunnel store errors.
	ErrTunnelNotFound = errors.New("tunnel not found")
	ErrDuplicateName  = errors.New("tunnel name already exists")
	ErrInvalidName    = errors.New("invalid tunnel name")
	ErrStoreClosed    = errors.New("tunnel store is closed")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")
	ErrEncryption          = errors.New("encryption error")
	ErrDecryption          = errors.New("decryption error")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")

	// Privilege errors.
	ErrPermissionDenied  = errors.New("permission denied")
	ErrShellNotStarted   = errors.New("root shell not started")
	ErrShellUnavailable  = errors.New("root shell unavailable")
	ErrElevationDeclined = errors.New("privilege elevation declined")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
