// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package auth

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSigningKey is returned when a provider has no active key.
var ErrNoSigningKey = errors.New("no signing key configured")

// KeyProvider supplies the keys used to sign and verify session tokens.
// Implementations must support rotation without invalidating tokens signed
// under a still-valid prior key within the provider's grace window.
type KeyProvider interface {
	// SigningKey returns the active key for new tokens.
	SigningKey() ([]byte, error)

	// VerificationKeys returns every key a token may legitimately be
	// signed under: the active key first, then prior keys still inside
	// their rotation grace window.
	VerificationKeys() [][]byte
}

// retiredKey is a previous signing key plus the moment it was rotated out.
type retiredKey struct {
	key       []byte
	rotatedAt time.Time
}

// RotatingKeyProvider is the default KeyProvider: one active key plus
// retired keys that remain verifiable for a fixed grace period after
// rotation.
type RotatingKeyProvider struct {
	mu      sync.RWMutex
	current []byte
	retired []retiredKey
	grace   time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewRotatingKeyProvider creates a provider with the given active key and
// grace window. Previous keys passed in are treated as freshly rotated out.
func NewRotatingKeyProvider(current []byte, previous [][]byte, grace time.Duration) *RotatingKeyProvider {
	p := &RotatingKeyProvider{
		current: current,
		grace:   grace,
		now:     time.Now,
	}
	for _, k := range previous {
		p.retired = append(p.retired, retiredKey{key: k, rotatedAt: p.now()})
	}
	return p
}

// SigningKey returns the active key.
func (p *RotatingKeyProvider) SigningKey() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.current) == 0 {
		return nil, ErrNoSigningKey
	}
	return p.current, nil
}

// VerificationKeys returns the active key followed by retired keys still
// inside the grace window. Expired retired keys are pruned as a side
// effect of the next Rotate call, not here; returning them filtered is
// sufficient for correctness.
func (p *RotatingKeyProvider) VerificationKeys() [][]byte {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([][]byte, 0, 1+len(p.retired))
	if len(p.current) > 0 {
		keys = append(keys, p.current)
	}
	cutoff := p.now().Add(-p.grace)
	for _, rk := range p.retired {
		if rk.rotatedAt.After(cutoff) {
			keys = append(keys, rk.key)
		}
	}
	return keys
}

// Rotate installs a new active key. The old active key becomes a retired
// key verifiable for the grace window; retired keys past the window are
// dropped.
func (p *RotatingKeyProvider) Rotate(newKey []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if len(p.current) > 0 {
		p.retired = append(p.retired, retiredKey{key: p.current, rotatedAt: now})
	}
	p.current = newKey

	cutoff := now.Add(-p.grace)
	kept := p.retired[:0]
	for _, rk := range p.retired {
		if rk.rotatedAt.After(cutoff) {
			kept = append(kept, rk)
		}
	}
	p.retired = kept
}
