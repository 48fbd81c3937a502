package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"
)

const (
	// sealKeyLen is the length of a derived AES-256 key in bytes.
	sealKeyLen = 32

	// sealNonceLen is the length of the AES-GCM nonce in bytes.
	sealNonceLen = 12

	// sealSecretLen is the length of the device secret in bytes.
	sealSecretLen = 32

	// sealHKDFInfo is the constant info string used in HKDF-SHA256 key
	// derivation for sealed cache entries.
	sealHKDFInfo = "shelf-cache-sealing"
)

// Sealer protects payloads at rest with a per-key AES-256-GCM key derived
// from a device secret:
//
//	key = HKDF-SHA256(secret, salt=document key, info="shelf-cache-sealing")
//
// The document key doubles as the HKDF salt so every document is sealed
// under a distinct key. Sealed form is nonce(12B) || GCM(payload) || tag.
// Sealing is transparent to callers; it changes what is on disk, not the
// bytes a Get returns.
type Sealer struct {
	secret []byte
}

// NewSealer creates a Sealer from a 32-byte device secret.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) != sealSecretLen {
		return nil, fmt.Errorf("store: seal secret must be %d bytes, got %d", sealSecretLen, len(secret))
	}
	s := make([]byte, sealSecretLen)
	copy(s, secret)
	return &Sealer{secret: s}, nil
}

// LoadOrCreateSecret reads the device secret at path, generating and
// persisting a fresh random one on first use.
func LoadOrCreateSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != sealSecretLen {
			return nil, fmt.Errorf("store: seal secret at %s has %d bytes, want %d", path, len(secret), sealSecretLen)
		}
		return secret, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("store: read seal secret: %w", err)
	}

	secret = make([]byte, sealSecretLen)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("store: generate seal secret: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("store: create secret directory: %w", err)
	}
	if err := os.WriteFile(path, secret, 0600); err != nil {
		return nil, fmt.Errorf("store: write seal secret: %w", err)
	}
	return secret, nil
}

// deriveKey derives the AES-256 key for one document key.
func (s *Sealer) deriveKey(docKey string) ([]byte, error) {
	r := hkdf.New(sha256.New, s.secret, []byte(docKey), []byte(sealHKDFInfo))
	key := make([]byte, sealKeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("store: derive seal key: %w", err)
	}
	return key, nil
}

// Seal encrypts payload for storage under docKey.
func (s *Sealer) Seal(docKey string, payload []byte) ([]byte, error) {
	gcm, err := s.aead(docKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, sealNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("store: generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, payload, nil), nil
}

// Open decrypts a sealed payload previously produced by Seal for docKey.
func (s *Sealer) Open(docKey string, sealed []byte) ([]byte, error) {
	gcm, err := s.aead(docKey)
	if err != nil {
		return nil, err
	}

	if len(sealed) < sealNonceLen+gcm.Overhead() {
		return nil, fmt.Errorf("store: sealed payload too short: %d bytes", len(sealed))
	}
	nonce, ct := sealed[:sealNonceLen], sealed[sealNonceLen:]
	payload, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open sealed payload: %w", err)
	}
	return payload, nil
}

// aead builds the AES-256-GCM cipher for one document key.
func (s *Sealer) aead(docKey string) (cipher.AEAD, error) {
	key, err := s.deriveKey(docKey)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("store: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("store: create GCM: %w", err)
	}
	return gcm, nil
}
