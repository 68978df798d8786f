package backend

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeBackend is a minimal Backend for resolver tests.
type fakeBackend struct {
	kind    Kind
	version string
}

func (b *fakeBackend) Kind() Kind               { return b.kind }
func (b *fakeBackend) Version() (string, error) { return b.version, nil }

// newFakeResolver builds a resolver with counting fakes. The returned
// counters track probe and session-start invocations.
func newFakeResolver(markerPresent bool, sessionErr error) (*Resolver, *atomic.Int32, *atomic.Int32) {
	var probes, sessions atomic.Int32
	r := &Resolver{
		Probe: func() bool {
			probes.Add(1)
			return markerPresent
		},
		StartSession: func() error {
			sessions.Add(1)
			return sessionErr
		},
		NewKernel: func() (Backend, error) {
			return &fakeBackend{kind: KindKernel, version: "1.0.0"}, nil
		},
		NewUserspace: func() Backend {
			return &fakeBackend{kind: KindUserspace, version: "0.0.1"}
		},
	}
	return r, &probes, &sessions
}

func TestResolver_KernelPath(t *testing.T) {
	r, probes, sessions := newFakeResolver(true, nil)

	b := r.Resolve()
	if b.Kind() != KindKernel {
		t.Errorf("resolved kind = %s, want kernel", b.Kind())
	}
	if probes.Load() != 1 {
		t.Errorf("probe count = %d, want 1", probes.Load())
	}
	if sessions.Load() != 1 {
		t.Errorf("session start count = %d, want 1", sessions.Load())
	}
}

func TestResolver_MarkerAbsent(t *testing.T) {
	r, _, sessions := newFakeResolver(false, nil)

	b := r.Resolve()
	if b.Kind() != KindUserspace {
		t.Errorf("resolved kind = %s, want userspace", b.Kind())
	}
	if sessions.Load() != 0 {
		t.Errorf("session factory invoked %d times with marker absent, want 0", sessions.Load())
	}
}

func TestResolver_SessionFailureFallsBack(t *testing.T) {
	r, _, sessions := newFakeResolver(true, errors.New("sudo: a password is required"))

	b := r.Resolve()
	if b.Kind() != KindUserspace {
		t.Errorf("resolved kind = %s, want userspace after session failure", b.Kind())
	}
	if sessions.Load() != 1 {
		t.Errorf("session start count = %d, want 1 (no retry)", sessions.Load())
	}

	// A later call must not retry the kernel path.
	r.Resolve()
	if sessions.Load() != 1 {
		t.Errorf("session retried on second Resolve, count = %d", sessions.Load())
	}
}

func TestResolver_KernelConstructionFailureFallsBack(t *testing.T) {
	r, _, _ := newFakeResolver(true, nil)
	r.NewKernel = func() (Backend, error) {
		return nil, errors.New("shell not started")
	}

	b := r.Resolve()
	if b.Kind() != KindUserspace {
		t.Errorf("resolved kind = %s, want userspace", b.Kind())
	}
}

func TestResolver_ConcurrentCallersSingleProbe(t *testing.T) {
	var probes atomic.Int32
	r, _, _ := newFakeResolver(false, nil)
	r.Probe = func() bool {
		probes.Add(1)
		// Artificial delay so racing callers pile up on the lock.
		time.Sleep(50 * time.Millisecond)
		return false
	}

	const callers = 16
	results := make([]Backend, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve()
		}(i)
	}
	wg.Wait()

	if probes.Load() != 1 {
		t.Errorf("probe executed %d times under %d concurrent callers, want 1", probes.Load(), callers)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d observed a different backend instance", i)
		}
	}
}

func TestResolver_Resolved(t *testing.T) {
	r, _, _ := newFakeResolver(false, nil)

	if _, ok := r.Resolved(); ok {
		t.Error("Resolved reported true before resolution")
	}

	b := r.Resolve()

	got, ok := r.Resolved()
	if !ok {
		t.Fatal("Resolved reported false after resolution")
	}
	if got != b {
		t.Error("Resolved returned a different instance")
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindKernel, "kernel"},
		{KindUserspace, "userspace"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
