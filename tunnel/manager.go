// Package tunnel manages the set of configured WireGuard tunnels.
// It keeps an in-memory registry over the persistent store, owns key
// generation for new tunnels, and tracks the most recently used tunnel.
// Bringing tunnels up and down is the backend's concern, not this
// package's.
package tunnel

import (
	"sort"
	"sync"

	"github.com/yllada/wg-manager/backend"
	"github.com/yllada/wg-manager/common"
	"github.com/yllada/wg-manager/store"
)

// Manager maintains the tunnel registry.
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	store   *store.Store
	creds   common.CredentialStore
	tunnels map[string]*store.Tunnel
}

// credName returns the credential store key holding a tunnel's
// private key.
func credName(tunnel string) string {
	return "tunnel/" + tunnel
}

// NewManager creates a Manager and loads existing tunnels from the
// store.
func NewManager(st *store.Store, creds common.CredentialStore) (*Manager, error) {
	tunnels, err := st.List()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:   st,
		creds:   creds,
		tunnels: make(map[string]*store.Tunnel, len(tunnels)),
	}
	for _, t := range tunnels {
		m.tunnels[t.Name] = t
	}
	common.LogInfo("Loaded %d tunnel(s)", len(tunnels))
	return m, nil
}

// Create generates a fresh keypair, stores the private key in the
// credential store, and persists a new tunnel configuration.
func (m *Manager) Create(name string, addresses []string, listenPort int) (*store.Tunnel, error) {
	if !store.ValidName(name) {
		return nil, common.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tunnels[name]; exists {
		return nil, common.ErrDuplicateName
	}

	key, err := backend.GenerateKey()
	if err != nil {
		return nil, err
	}

	t := &store.Tunnel{
		Name:       name,
		PublicKey:  key.PublicKey().String(),
		Addresses:  addresses,
		ListenPort: listenPort,
	}
	if err := m.store.Save(t); err != nil {
		return nil, err
	}
	if err := m.creds.Store(credName(name), key.String()); err != nil {
		// Without the private key the stored row is useless.
		m.store.Delete(name)
		return nil, err
	}

	m.tunnels[name] = t
	common.LogInfo("Created tunnel %q", name)
	return t, nil
}

// Get returns the tunnel with the given name.
func (m *Manager) Get(name string) (*store.Tunnel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tunnels[name]
	if !ok {
		return nil, common.ErrTunnelNotFound
	}
	return t, nil
}

// List returns all tunnels ordered by name.
func (m *Manager) List() []*store.Tunnel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tunnels := make([]*store.Tunnel, 0, len(m.tunnels))
	for _, t := range m.tunnels {
		tunnels = append(tunnels, t)
	}
	sort.Slice(tunnels, func(i, j int) bool {
		return tunnels[i].Name < tunnels[j].Name
	})
	return tunnels
}

// Delete removes a tunnel and its private key.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tunnels[name]; !ok {
		return common.ErrTunnelNotFound
	}
	if err := m.store.Delete(name); err != nil {
		return err
	}
	if err := m.creds.Delete(credName(name)); err != nil {
		common.LogWarn("Failed to delete private key for %q: %v", name, err)
	}
	delete(m.tunnels, name)
	common.LogInfo("Deleted tunnel %q", name)
	return nil
}

// Rename changes a tunnel's name, moving its private key along.
func (m *Manager) Rename(oldName, newName string) error {
	if !store.ValidName(newName) {
		return common.ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tunnels[oldName]
	if !ok {
		return common.ErrTunnelNotFound
	}
	if _, exists := m.tunnels[newName]; exists {
		return common.ErrDuplicateName
	}

	if err := m.store.Rename(oldName, newName); err != nil {
		return err
	}
	if key, err := m.creds.Get(credName(oldName)); err == nil {
		if err := m.creds.Store(credName(newName), key); err == nil {
			m.creds.Delete(credName(oldName))
		}
	}

	t.Name = newName
	delete(m.tunnels, oldName)
	m.tunnels[newName] = t
	return nil
}

// PrivateKey returns a tunnel's private key from the credential store.
func (m *Manager) PrivateKey(name string) (backend.Key, error) {
	m.mu.RLock()
	_, ok := m.tunnels[name]
	m.mu.RUnlock()
	if !ok {
		return backend.Key{}, common.ErrTunnelNotFound
	}

	encoded, err := m.creds.Get(credName(name))
	if err != nil {
		return backend.Key{}, err
	}
	return backend.ParseKey(encoded)
}

// MarkUsed records that a tunnel was activated now.
func (m *Manager) MarkUsed(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tunnels[name]; !ok {
		return common.ErrTunnelNotFound
	}
	return m.store.MarkUsed(name)
}
