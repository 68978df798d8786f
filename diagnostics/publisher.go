// Package diagnostics provides best-effort metadata reporting.
// This file contains the Publisher, which reacts to backend resolution
// by recording the backend kind and version.
package diagnostics

import (
	"github.com/yllada/wg-manager/async"
	"github.com/yllada/wg-manager/backend"
	"github.com/yllada/wg-manager/common"
)

// Publisher pushes backend metadata to a sink once the backend is
// resolved. It runs entirely through the task queue so it never blocks
// resolution or the callback context, and its failures never surface
// beyond a log line.
type Publisher struct {
	sink   common.MetadataSink
	worker *async.Worker
}

// NewPublisher creates a Publisher recording to sink via worker.
func NewPublisher(sink common.MetadataSink, worker *async.Worker) *Publisher {
	return &Publisher{sink: sink, worker: worker}
}

// Attach registers the publisher on the backend future. On completion
// it queues one item recording the backend kind, then a second, chained
// behind the first, reading and recording the version. Version
// retrieval may block, which is why it is queued rather than read
// inline.
func (p *Publisher) Attach(future *async.Future[backend.Backend]) {
	future.OnComplete(func(b backend.Backend) {
		h := async.Run(p.worker, func() error {
			return p.sink.PutMetadata(common.MetadataKeyBackend, b.Kind().String())
		})
		h.OnComplete(func(_ struct{}, err error) {
			if err != nil {
				common.LogDebug("Failed to record backend kind: %v", err)
			}
			p.publishVersion(b)
		})
	})
}

func (p *Publisher) publishVersion(b backend.Backend) {
	h := async.Submit(p.worker, func() (string, error) {
		return b.Version()
	})
	h.OnComplete(func(version string, err error) {
		if err != nil {
			common.LogDebug("Failed to read backend version: %v", err)
			return
		}
		async.Run(p.worker, func() error {
			if err := p.sink.PutMetadata(common.MetadataKeyBackendVersion, version); err != nil {
				common.LogDebug("Failed to record backend version: %v", err)
			}
			return nil
		})
	})
}
