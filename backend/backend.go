// Package backend selects and exposes the WireGuard tunnel backend for
// the process: the in-kernel implementation when the module is loaded
// and root can be obtained, otherwise the bundled userspace
// implementation. Exactly one backend exists per process once resolved.
package backend

// Kind identifies a backend implementation strategy.
type Kind int

const (
	// KindKernel is the in-kernel WireGuard implementation, driven
	// through the root shell.
	KindKernel Kind = iota
	// KindUserspace is the bundled userspace implementation.
	KindUserspace
)

// String returns a human-readable representation of the backend kind.
func (k Kind) String() string {
	switch k {
	case KindKernel:
		return "kernel"
	case KindUserspace:
		return "userspace"
	default:
		return "unknown"
	}
}

// Backend is the capability surface shared by both implementations.
// Consumers receive a shared, read-only reference; the Resolver owns
// the single instance.
type Backend interface {
	// Kind identifies the implementation strategy.
	Kind() Kind
	// Version returns the backend's version string. It may block:
	// the kernel variant reads sysfs and the userspace variant may
	// need to interrogate its device layer.
	Version() (string, error)
}
