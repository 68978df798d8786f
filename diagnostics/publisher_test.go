package diagnostics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yllada/wg-manager/async"
	"github.com/yllada/wg-manager/backend"
)

// recordingSink captures PutMetadata calls.
type recordingSink struct {
	mu      sync.Mutex
	entries []string
	values  map[string]string
	err     error
	gotAll  chan struct{}
	want    int
}

func newRecordingSink(want int) *recordingSink {
	return &recordingSink{
		values: make(map[string]string),
		gotAll: make(chan struct{}),
		want:   want,
	}
}

func (s *recordingSink) PutMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, key)
	s.values[key] = value
	if len(s.entries) == s.want {
		close(s.gotAll)
	}
	return s.err
}

type staticBackend struct {
	kind    backend.Kind
	version string
	verErr  error
}

func (b *staticBackend) Kind() backend.Kind { return b.kind }

func (b *staticBackend) Version() (string, error) { return b.version, b.verErr }

func newPublisherHarness(t *testing.T, sink *recordingSink) (*Publisher, *async.Future[backend.Backend]) {
	t.Helper()
	d := async.NewDispatcher()
	w := async.NewWorker(d)
	t.Cleanup(func() {
		w.Close()
		d.Close()
	})

	future := async.NewFuture[backend.Backend]()
	p := NewPublisher(sink, w)
	p.Attach(future)
	return p, future
}

func TestPublisher_RecordsKindThenVersion(t *testing.T) {
	sink := newRecordingSink(2)
	_, future := newPublisherHarness(t, sink)

	future.Complete(&staticBackend{kind: backend.KindKernel, version: "1.0.20210606"})

	select {
	case <-sink.gotAll:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for metadata")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()

	if len(sink.entries) != 2 {
		t.Fatalf("PutMetadata called %d times, want 2: %v", len(sink.entries), sink.entries)
	}
	if sink.entries[0] != "backend" || sink.entries[1] != "backendVersion" {
		t.Errorf("metadata order = %v, want [backend backendVersion]", sink.entries)
	}
	if sink.values["backend"] != "kernel" {
		t.Errorf("backend metadata = %q, want %q", sink.values["backend"], "kernel")
	}
	if sink.values["backendVersion"] != "1.0.20210606" {
		t.Errorf("backendVersion metadata = %q", sink.values["backendVersion"])
	}
}

func TestPublisher_KindRecordedExactlyOnce(t *testing.T) {
	sink := newRecordingSink(2)
	_, future := newPublisherHarness(t, sink)

	future.Complete(&staticBackend{kind: backend.KindUserspace, version: "0.0.1"})

	select {
	case <-sink.gotAll:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for metadata")
	}
	// Allow any stray duplicate submissions to drain.
	time.Sleep(100 * time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()

	kinds := 0
	for _, k := range sink.entries {
		if k == "backend" {
			kinds++
		}
	}
	if kinds != 1 {
		t.Errorf("backend kind recorded %d times, want 1", kinds)
	}
	if sink.values["backend"] != "userspace" {
		t.Errorf("backend metadata = %q, want %q", sink.values["backend"], "userspace")
	}
}

func TestPublisher_SinkFailureSwallowed(t *testing.T) {
	sink := newRecordingSink(2)
	sink.err = errors.New("endpoint unavailable")
	_, future := newPublisherHarness(t, sink)

	// Must not panic and must still attempt the version entry.
	future.Complete(&staticBackend{kind: backend.KindKernel, version: "1.0"})

	select {
	case <-sink.gotAll:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher stopped after first sink failure")
	}
}

func TestPublisher_VersionErrorSkipsRecord(t *testing.T) {
	sink := newRecordingSink(1)
	_, future := newPublisherHarness(t, sink)

	future.Complete(&staticBackend{
		kind:   backend.KindKernel,
		verErr: errors.New("module vanished"),
	})

	select {
	case <-sink.gotAll:
	case <-time.After(5 * time.Second):
		t.Fatal("kind never recorded")
	}
	time.Sleep(100 * time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if _, ok := sink.values["backendVersion"]; ok {
		t.Error("backendVersion recorded despite version error")
	}
}
