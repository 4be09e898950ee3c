// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package store

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealFailed is returned when a record cannot be sealed or unsealed.
var ErrSealFailed = errors.New("record seal operation failed")

// Sealer is the contract of the application-level credential-encryption
// collaborator: it protects record payloads at rest. The production
// deployment supplies an implementation backed by the platform RSA helper;
// this package ships an AEAD default and a pass-through for tests.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Unseal(ciphertext []byte) ([]byte, error)
}

// NoopSealer stores payloads unmodified. Test and development use only.
type NoopSealer struct{}

// Seal returns the plaintext unchanged.
func (NoopSealer) Seal(plaintext []byte) ([]byte, error) { return plaintext, nil }

// Unseal returns the ciphertext unchanged.
func (NoopSealer) Unseal(ciphertext []byte) ([]byte, error) { return ciphertext, nil }

// AEADSealer seals record payloads with XChaCha20-Poly1305 under a key
// derived from the configured secret. The nonce is generated per record
// and prepended to the ciphertext.
type AEADSealer struct {
	key [32]byte
}

// NewAEADSealer derives a sealing key from the given secret.
func NewAEADSealer(secret string) (*AEADSealer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty seal secret", ErrSealFailed)
	}
	s := &AEADSealer{key: sha256.Sum256([]byte(secret))}
	return s, nil
}

// Seal encrypts the payload.
func (s *AEADSealer) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSealFailed, err.Error())
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSealFailed, err.Error())
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Unseal decrypts a payload produced by Seal.
func (s *AEADSealer) Unseal(ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSealFailed, err.Error())
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: short ciphertext", ErrSealFailed)
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSealFailed, err.Error())
	}
	return plain, nil
}
