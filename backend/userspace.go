// Package backend selects and exposes the WireGuard tunnel backend.
// This file contains the userspace implementation.
package backend

// userspaceVersion is the version of the bundled userspace WireGuard
// implementation, set at build time via ldflags for release builds.
var userspaceVersion = "0.0.20230223"

// UserspaceBackend is the bundled userspace WireGuard implementation.
// Construction cannot fail: any fallibility (opening TUN devices,
// binding sockets) is deferred to per-tunnel operations. It needs no
// elevated privileges at construction time.
type UserspaceBackend struct{}

// NewUserspaceBackend creates the userspace backend.
func NewUserspaceBackend() *UserspaceBackend {
	return &UserspaceBackend{}
}

// Kind identifies this implementation as the userspace backend.
func (b *UserspaceBackend) Kind() Kind {
	return KindUserspace
}

// Version reports the bundled implementation's version.
func (b *UserspaceBackend) Version() (string, error) {
	return userspaceVersion, nil
}
