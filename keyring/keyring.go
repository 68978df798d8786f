// Package keyring provides secure secret storage for WG Manager.
// It uses the system keyring when available, falling back to an
// AES-GCM encrypted local file when not. Secrets stored here include
// tunnel private keys and the diagnostics endpoint credentials.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	zkeyring "github.com/zalando/go-keyring"

	"github.com/yllada/wg-manager/common"
)

// serviceName is the identifier used in the system keyring.
const serviceName = "wg-manager"

// Store is a credential store backed by the system keyring with an
// encrypted file fallback. It implements common.CredentialStore.
type Store struct {
	mu       sync.RWMutex
	useLocal bool
	local    map[string]string
	filePath string
	aead     cipher.AEAD
}

var _ common.CredentialStore = (*Store)(nil)

// New creates a Store. It probes the system keyring once; if the probe
// fails (headless session, no secret service), all operations use the
// encrypted local file instead.
func New() (*Store, error) {
	s := &Store{local: make(map[string]string)}

	probeKey := serviceName + "-probe"
	if err := zkeyring.Set(serviceName, probeKey, "ok"); err == nil {
		zkeyring.Delete(serviceName, probeKey)
		return s, nil
	}

	common.LogInfo("System keyring unavailable, using encrypted local storage")
	if err := s.initLocal(); err != nil {
		return nil, err
	}
	s.useLocal = true
	return s, nil
}

// initLocal prepares the encrypted file fallback. The encryption key is
// derived from machine-specific data so the file is unreadable when
// copied to another host, though not against a local attacker with the
// same uid.
func (s *Store) initLocal() error {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return err
	}
	s.filePath = filepath.Join(configDir, common.CredentialsFileName)

	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("%s-%s-%s-%d", serviceName, hostname, machineID(), os.Getuid())
	sum := sha256.Sum256([]byte(keyData))

	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return common.WrapError(err, "failed to derive storage key")
	}
	s.aead, err = cipher.NewGCM(block)
	if err != nil {
		return common.WrapError(err, "failed to initialize cipher")
	}

	s.loadLocal()
	return nil
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		return "default-machine-id"
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) loadLocal() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return
	}
	plaintext, err := s.decrypt(data)
	if err != nil {
		common.LogWarn("Ignoring unreadable credentials file: %v", err)
		return
	}
	json.Unmarshal(plaintext, &s.local)
}

// saveLocal persists the local map. Callers must hold at least a read
// lock over s.local.
func (s *Store) saveLocal() error {
	data, err := json.Marshal(s.local)
	if err != nil {
		return common.WrapError(err, "failed to serialize credentials")
	}
	encrypted, err := s.encrypt(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.filePath, encrypted, 0600); err != nil {
		return common.WrapError(err, "failed to write credentials file")
	}
	return nil
}

func (s *Store) encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(sealed)), nil
}

func (s *Store) decrypt(data []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, common.ErrDecryption
	}
	if len(raw) < s.aead.NonceSize() {
		return nil, common.ErrDecryption
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrDecryption
	}
	return plaintext, nil
}

// Store saves a secret under the given name.
func (s *Store) Store(name, secret string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}

	if s.useLocal {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.local[name] = secret
		return s.saveLocal()
	}

	if err := zkeyring.Set(serviceName, name, secret); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}
	return nil
}

// Get retrieves the secret stored under the given name.
func (s *Store) Get(name string) (string, error) {
	if name == "" {
		return "", errors.New("secret name cannot be empty")
	}

	if s.useLocal {
		s.mu.RLock()
		defer s.mu.RUnlock()
		secret, ok := s.local[name]
		if !ok {
			return "", common.ErrCredentialsNotFound
		}
		return secret, nil
	}

	secret, err := zkeyring.Get(serviceName, name)
	if err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return "", common.ErrCredentialsNotFound
		}
		return "", common.WrapError(err, "keyring access failed")
	}
	return secret, nil
}

// Delete removes the secret stored under the given name.
func (s *Store) Delete(name string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}

	if s.useLocal {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.local, name)
		return s.saveLocal()
	}

	if err := zkeyring.Delete(serviceName, name); err != nil && !errors.Is(err, zkeyring.ErrNotFound) {
		return common.WrapError(err, "keyring delete failed")
	}
	return nil
}
