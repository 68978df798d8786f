// Package backend selects and exposes the WireGuard tunnel backend.
// This file contains the Resolver, which performs the one-time fallback
// decision between the kernel and userspace implementations.
package backend

import (
	"sync"

	"github.com/yllada/wg-manager/common"
	"github.com/yllada/wg-manager/rootshell"
)

// resolutionState tracks the resolver's progress. Transitions are
// monotonic: unresolved -> resolving -> resolved, never back.
type resolutionState int

const (
	stateUnresolved resolutionState = iota
	stateResolving
	stateResolved
)

// Resolver decides, exactly once per process, which backend handles
// all tunnel operations. The first caller of Resolve performs the
// probe while holding the lock; concurrent callers block until the
// winner finishes, then read the memoized result. Resolution never
// fails: the userspace backend is always constructible.
type Resolver struct {
	mu      sync.Mutex
	state   resolutionState
	backend Backend

	// Probe reports whether the in-kernel WireGuard module is
	// present. Replaceable for tests.
	Probe func() bool
	// StartSession starts the privileged session required by the
	// kernel backend. Replaceable for tests.
	StartSession func() error
	// NewKernel constructs the kernel backend. Replaceable for tests.
	NewKernel func() (Backend, error)
	// NewUserspace constructs the userspace backend. Must not fail.
	// Replaceable for tests.
	NewUserspace func() Backend
}

// NewResolver creates a Resolver using the given root shell for the
// kernel path.
func NewResolver(shell *rootshell.Shell) *Resolver {
	return &Resolver{
		Probe: func() bool {
			return common.FileExists(common.KernelModulePath)
		},
		StartSession: shell.Start,
		NewKernel: func() (Backend, error) {
			return NewKernelBackend(shell)
		},
		NewUserspace: func() Backend {
			return NewUserspaceBackend()
		},
	}
}

// Resolve returns the process-wide backend, performing the decision on
// first call. The kernel path is abandoned entirely, never retried, on
// any error during privilege escalation or construction; those errors
// are intentionally not surfaced, as ending up on the userspace path
// is a routine outcome rather than a failure.
func (r *Resolver) Resolve() Backend {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateResolved {
		return r.backend
	}
	r.state = stateResolving

	var b Backend
	if r.Probe() {
		if err := r.StartSession(); err != nil {
			common.LogInfo("Kernel module present but privileged session unavailable: %v", err)
		} else if kb, err := r.NewKernel(); err != nil {
			common.LogWarn("Kernel backend construction failed: %v", err)
		} else {
			b = kb
		}
	}
	if b == nil {
		b = r.NewUserspace()
	}

	r.backend = b
	r.state = stateResolved
	common.LogInfo("Resolved tunnel backend: %s", b.Kind())
	return b
}

// Resolved returns the backend without triggering resolution. The
// second return value reports whether resolution has happened.
func (r *Resolver) Resolved() (Backend, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateResolved {
		return nil, false
	}
	return r.backend, true
}
