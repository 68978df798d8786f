// Package app wires the per-process services of WG Manager into a
// single owned context. One App is constructed at startup and passed
// to every consumer; there is no global mutable state. The App owns
// the task queue, the backend resolver, and the backend future, and
// defines their initialization and teardown order.
package app

import (
	"path/filepath"

	"github.com/yllada/wg-manager/async"
	"github.com/yllada/wg-manager/backend"
	"github.com/yllada/wg-manager/common"
	"github.com/yllada/wg-manager/config"
	"github.com/yllada/wg-manager/diagnostics"
	"github.com/yllada/wg-manager/keyring"
	"github.com/yllada/wg-manager/notify"
	"github.com/yllada/wg-manager/rootshell"
	"github.com/yllada/wg-manager/store"
	"github.com/yllada/wg-manager/tunnel"
)

// App holds one instance of every per-process service. Member
// identities never change after construction; only the state they
// manage transitions internally.
type App struct {
	cfg        *config.Config
	dispatcher *async.Dispatcher
	worker     *async.Worker
	future     *async.Future[backend.Backend]
	resolver   *backend.Resolver
	shell      *rootshell.Shell
	creds      common.CredentialStore
	store      *store.Store
	tunnels    *tunnel.Manager
	reporter   *diagnostics.Reporter
	notifier   *notify.Notifier
}

// New constructs the application context. The task queue, resolver,
// and backend future all exist before any consumer can submit work.
// When diagnostics are enabled, backend resolution is submitted to the
// queue immediately so the metadata report is populated; otherwise
// resolution waits for the first Backend call.
func New(cfg *config.Config) (*App, error) {
	dataDir, err := common.GetDataDir()
	if err != nil {
		return nil, err
	}

	creds, err := keyring.New()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dataDir, common.TunnelStoreFileName))
	if err != nil {
		return nil, err
	}

	tunnels, err := tunnel.NewManager(st, creds)
	if err != nil {
		st.Close()
		return nil, err
	}

	dispatcher := async.NewDispatcher()
	worker := async.NewWorker(dispatcher)
	shell := rootshell.New()
	resolver := backend.NewResolver(shell)
	if cfg.ForceUserspace {
		resolver.Probe = func() bool { return false }
	}

	a := &App{
		cfg:        cfg,
		dispatcher: dispatcher,
		worker:     worker,
		future:     async.NewFuture[backend.Backend](),
		resolver:   resolver,
		shell:      shell,
		creds:      creds,
		store:      st,
		tunnels:    tunnels,
		reporter:   diagnostics.NewReporter(cfg.DiagnosticsURL, creds),
		notifier:   notify.New(),
	}

	if cfg.EnableDiagnostics {
		publisher := diagnostics.NewPublisher(a.reporter, worker)
		publisher.Attach(a.future)
		a.resolveAsync()
	}

	return a, nil
}

// resolveAsync submits backend resolution to the task queue and
// completes the future from the dispatcher. This is the only place the
// future is completed, preserving its single-assignment contract.
func (a *App) resolveAsync() {
	h := async.Submit(a.worker, func() (backend.Backend, error) {
		return a.resolver.Resolve(), nil
	})
	h.OnComplete(func(b backend.Backend, _ error) {
		a.future.Complete(b)
		if a.cfg.ShowNotifications {
			if err := a.notifier.Send("WG Manager", "Using "+b.Kind().String()+" WireGuard backend"); err != nil {
				common.LogDebug("Backend notification failed: %v", err)
			}
		}
	})
}

// Backend returns the resolved backend, performing the resolution
// inline if it has not happened yet. The first call may block on the
// kernel module probe and privilege escalation.
func (a *App) Backend() backend.Backend {
	return a.resolver.Resolve()
}

// BackendAsync returns the backend future for non-blocking consumers.
// The future completes only when resolution runs through the task
// queue, which happens at startup when diagnostics are enabled.
func (a *App) BackendAsync() *async.Future[backend.Backend] {
	return a.future
}

// Worker returns the shared serial task queue for arbitrary background
// work tied to the same ordering guarantees as backend resolution.
func (a *App) Worker() *async.Worker {
	return a.worker
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Tunnels returns the tunnel manager.
func (a *App) Tunnels() *tunnel.Manager {
	return a.tunnels
}

// CredentialStore returns the credential store.
func (a *App) CredentialStore() common.CredentialStore {
	return a.creds
}

// RootShell returns the privileged session. It may not be started;
// only the kernel backend path starts it.
func (a *App) RootShell() *rootshell.Shell {
	return a.shell
}

// Close tears down the context: the worker drains first so queued
// completions still reach the dispatcher, then the dispatcher stops,
// then the store closes. The root shell, once started, lives until
// process exit.
func (a *App) Close() {
	a.worker.Close()
	a.dispatcher.Close()
	if err := a.store.Close(); err != nil {
		common.LogWarn("Failed to close tunnel store: %v", err)
	}
}
