// Package store persists tunnel configurations for WG Manager.
// Tunnels are stored in a SQLite database in the user's data directory;
// private keys live in the credential store, never in the database.
package store

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yllada/wg-manager/common"
)

// Tunnel is a persisted tunnel configuration. The private key is held
// in the credential store under the tunnel name; only the derived
// public key is persisted here.
type Tunnel struct {
	// Name is the interface name, unique per store (e.g. "wg0").
	Name string
	// PublicKey is the base64-encoded public key of the interface.
	PublicKey string
	// Addresses are the interface addresses in CIDR notation.
	Addresses []string
	// ListenPort is the UDP listen port, 0 for automatic selection.
	ListenPort int
	// Created is when the tunnel was first saved.
	Created time.Time
	// LastUsed is when the tunnel was last activated, zero if never.
	LastUsed time.Time
}

// tunnelNameRe matches valid interface names: 1-15 chars, no slash or
// whitespace, matching what the kernel accepts for interface names.
var tunnelNameRe = regexp.MustCompile(`^[a-zA-Z0-9_=+.-]{1,15}$`)

// ValidName reports whether name is acceptable as a tunnel name.
func ValidName(name string) bool {
	return tunnelNameRe.MatchString(name)
}

// Store is a SQLite-backed tunnel configuration store.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS tunnels (
	name        TEXT PRIMARY KEY,
	public_key  TEXT NOT NULL,
	addresses   TEXT NOT NULL DEFAULT '',
	listen_port INTEGER NOT NULL DEFAULT 0,
	created     INTEGER NOT NULL,
	last_used   INTEGER NOT NULL DEFAULT 0
);`

// Open opens (creating if necessary) the tunnel store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "failed to open tunnel store")
	}
	// SQLite allows a single writer; serializing through one
	// connection avoids SQLITE_BUSY under concurrent access.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "failed to initialize tunnel store")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a new tunnel. It fails with common.ErrDuplicateName if
// a tunnel with the same name exists.
func (s *Store) Save(t *Tunnel) error {
	if !ValidName(t.Name) {
		return common.ErrInvalidName
	}
	if t.Created.IsZero() {
		t.Created = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO tunnels (name, public_key, addresses, listen_port, created, last_used)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.PublicKey, joinAddresses(t.Addresses), t.ListenPort,
		t.Created.Unix(), unixOrZero(t.LastUsed),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateName
		}
		return common.WrapError(err, "failed to save tunnel")
	}
	return nil
}

// Get returns the tunnel with the given name.
func (s *Store) Get(name string) (*Tunnel, error) {
	row := s.db.QueryRow(
		`SELECT name, public_key, addresses, listen_port, created, last_used
		 FROM tunnels WHERE name = ?`, name)
	t, err := scanTunnel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrTunnelNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to load tunnel")
	}
	return t, nil
}

// List returns all tunnels ordered by name.
func (s *Store) List() ([]*Tunnel, error) {
	rows, err := s.db.Query(
		`SELECT name, public_key, addresses, listen_port, created, last_used
		 FROM tunnels ORDER BY name`)
	if err != nil {
		return nil, common.WrapError(err, "failed to list tunnels")
	}
	defer rows.Close()

	var tunnels []*Tunnel
	for rows.Next() {
		t, err := scanTunnel(rows)
		if err != nil {
			return nil, common.WrapError(err, "failed to scan tunnel")
		}
		tunnels = append(tunnels, t)
	}
	return tunnels, rows.Err()
}

// Delete removes the tunnel with the given name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM tunnels WHERE name = ?`, name)
	if err != nil {
		return common.WrapError(err, "failed to delete tunnel")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrTunnelNotFound
	}
	return nil
}

// Rename changes a tunnel's name.
func (s *Store) Rename(oldName, newName string) error {
	if !ValidName(newName) {
		return common.ErrInvalidName
	}
	res, err := s.db.Exec(`UPDATE tunnels SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateName
		}
		return common.WrapError(err, "failed to rename tunnel")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrTunnelNotFound
	}
	return nil
}

// MarkUsed records that the tunnel was activated now.
func (s *Store) MarkUsed(name string) error {
	res, err := s.db.Exec(`UPDATE tunnels SET last_used = ? WHERE name = ?`,
		time.Now().Unix(), name)
	if err != nil {
		return common.WrapError(err, "failed to mark tunnel used")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrTunnelNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTunnel(row rowScanner) (*Tunnel, error) {
	var t Tunnel
	var addresses string
	var created, lastUsed int64
	if err := row.Scan(&t.Name, &t.PublicKey, &addresses, &t.ListenPort, &created, &lastUsed); err != nil {
		return nil, err
	}
	t.Addresses = splitAddresses(addresses)
	t.Created = time.Unix(created, 0)
	if lastUsed != 0 {
		t.LastUsed = time.Unix(lastUsed, 0)
	}
	return &t, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error
	// text; it does not expose typed errors for them.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
