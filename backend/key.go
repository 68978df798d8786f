// Package backend selects and exposes the WireGuard tunnel backend.
// This file contains Curve25519 key handling shared by both backends.
package backend

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// KeySize is the size in bytes of a WireGuard key.
const KeySize = 32

// Key is a WireGuard private or public key.
type Key [KeySize]byte

// GenerateKey creates a new random private key, clamped per Curve25519
// requirements.
func GenerateKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, fmt.Errorf("failed to generate key: %w", err)
	}
	k[0] &= 248
	k[31] = (k[31] & 127) | 64
	return k, nil
}

// PublicKey derives the public key for a private key.
func (k Key) PublicKey() Key {
	var pub Key
	curve25519.ScalarBaseMult((*[KeySize]byte)(&pub), (*[KeySize]byte)(&k))
	return pub
}

// String returns the standard base64 encoding used in WireGuard
// configuration files.
func (k Key) String() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// ParseKey decodes a base64-encoded key.
func ParseKey(s string) (Key, error) {
	var k Key
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(data) != KeySize {
		return Key{}, fmt.Errorf("invalid key length %d, want %d", len(data), KeySize)
	}
	copy(k[:], data)
	return k, nil
}
