package tunnel

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/yllada/wg-manager/backend"
	"github.com/yllada/wg-manager/common"
	"github.com/yllada/wg-manager/store"
)

// fakeCreds is an in-memory common.CredentialStore.
type fakeCreds struct {
	secrets map[string]string
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{secrets: make(map[string]string)}
}

func (f *fakeCreds) Store(name, secret string) error {
	f.secrets[name] = secret
	return nil
}

func (f *fakeCreds) Get(name string) (string, error) {
	s, ok := f.secrets[name]
	if !ok {
		return "", common.ErrCredentialsNotFound
	}
	return s, nil
}

func (f *fakeCreds) Delete(name string) error {
	delete(f.secrets, name)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeCreds) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tunnels.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	creds := newFakeCreds()
	m, err := NewManager(st, creds)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, creds
}

func TestManager_Create(t *testing.T) {
	m, creds := newTestManager(t)

	tun, err := m.Create("wg0", []string{"10.0.0.2/32"}, 51820)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tun.Name != "wg0" {
		t.Errorf("Name = %q", tun.Name)
	}
	if tun.PublicKey == "" {
		t.Error("PublicKey not set")
	}

	// Private key must live in the credential store and match the
	// persisted public key.
	encoded, ok := creds.secrets["tunnel/wg0"]
	if !ok {
		t.Fatal("private key not stored in credential store")
	}
	key, err := backend.ParseKey(encoded)
	if err != nil {
		t.Fatalf("stored private key invalid: %v", err)
	}
	if key.PublicKey().String() != tun.PublicKey {
		t.Error("stored public key does not match private key")
	}
}

func TestManager_CreateValidation(t *testing.T) {
	m, _ := newTestManager(t)

	if _, err := m.Create("bad name", nil, 0); !errors.Is(err, common.ErrInvalidName) {
		t.Errorf("Create with invalid name error = %v, want ErrInvalidName", err)
	}

	if _, err := m.Create("wg0", nil, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create("wg0", nil, 0); !errors.Is(err, common.ErrDuplicateName) {
		t.Errorf("duplicate Create error = %v, want ErrDuplicateName", err)
	}
}

func TestManager_DeleteRemovesKey(t *testing.T) {
	m, creds := newTestManager(t)

	if _, err := m.Create("wg0", nil, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete("wg0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := creds.secrets["tunnel/wg0"]; ok {
		t.Error("private key not removed on delete")
	}
	if _, err := m.Get("wg0"); !errors.Is(err, common.ErrTunnelNotFound) {
		t.Errorf("Get after delete error = %v, want ErrTunnelNotFound", err)
	}
}

func TestManager_Rename(t *testing.T) {
	m, creds := newTestManager(t)

	if _, err := m.Create("wg0", nil, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Rename("wg0", "home"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	if _, err := m.Get("home"); err != nil {
		t.Errorf("renamed tunnel missing: %v", err)
	}
	if _, ok := creds.secrets["tunnel/home"]; !ok {
		t.Error("private key not moved on rename")
	}
	if _, ok := creds.secrets["tunnel/wg0"]; ok {
		t.Error("old private key left behind on rename")
	}
}

func TestManager_PrivateKey(t *testing.T) {
	m, _ := newTestManager(t)

	tun, err := m.Create("wg0", nil, 0)
	if err != nil {
		t.Fatal(err)
	}

	key, err := m.PrivateKey("wg0")
	if err != nil {
		t.Fatalf("PrivateKey: %v", err)
	}
	if key.PublicKey().String() != tun.PublicKey {
		t.Error("PrivateKey does not correspond to stored public key")
	}

	if _, err := m.PrivateKey("ghost"); !errors.Is(err, common.ErrTunnelNotFound) {
		t.Errorf("PrivateKey for missing tunnel error = %v, want ErrTunnelNotFound", err)
	}
}

func TestManager_ListSortedAndReloaded(t *testing.T) {
	m, creds := newTestManager(t)

	for _, name := range []string{"wg1", "office", "wg0"} {
		if _, err := m.Create(name, nil, 0); err != nil {
			t.Fatal(err)
		}
	}

	names := func(m *Manager) []string {
		var out []string
		for _, tun := range m.List() {
			out = append(out, tun.Name)
		}
		return out
	}

	got := names(m)
	want := []string{"office", "wg0", "wg1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List order = %v, want %v", got, want)
		}
	}

	// A new manager over the same store sees the same tunnels.
	m2, err := NewManager(m.store, creds)
	if err != nil {
		t.Fatalf("NewManager reload: %v", err)
	}
	if len(m2.List()) != 3 {
		t.Errorf("reloaded manager has %d tunnels, want 3", len(m2.List()))
	}
}
