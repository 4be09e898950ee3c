// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

/*
token.go - Session Token Codec

Temporary session credentials carry a signed, self-describing JWT binding
{principal, assumed role, optional session policy, issue time, expiry}.
Verification checks signature and expiry without a store round-trip; the
authorization engine separately consults the snapshot's revocation set so
an administrator can invalidate a session before natural expiry.
*/

package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the claims embedded in a session token.
type SessionClaims struct {
	// Parent is the principal id that assumed the role.
	Parent string `json:"parent"`

	// Role is the assumed role name.
	Role string `json:"role"`

	// SessionPolicy is the optional narrowing policy document,
	// base64-encoded JSON. Empty when the session carries no extra policy.
	SessionPolicy string `json:"sessionPolicy,omitempty"`

	jwt.RegisteredClaims
}

// SessionID returns the unique id assigned at issuance, used as the
// revocation key.
func (c *SessionClaims) SessionID() string {
	return c.ID
}

// DecodeSessionPolicy returns the embedded session policy JSON, or nil
// when the session carries none.
func (c *SessionClaims) DecodeSessionPolicy() ([]byte, error) {
	if c.SessionPolicy == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(c.SessionPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session policy encoding", ErrInvalidCredential)
	}
	return raw, nil
}

// TokenIssuer signs and verifies session tokens with HS256 keys from a
// KeyProvider.
type TokenIssuer struct {
	keys KeyProvider
}

// NewTokenIssuer creates a token issuer bound to the given key provider.
func NewTokenIssuer(keys KeyProvider) *TokenIssuer {
	return &TokenIssuer{keys: keys}
}

// Issue creates a signed session token for parent assuming role, valid
// for the given duration. sessionPolicy, when non-nil, is the raw JSON of
// the narrowing policy and is embedded base64-encoded. Returns the signed
// token and the session id under which the session can be revoked.
func (t *TokenIssuer) Issue(parent, role string, sessionPolicy []byte, duration time.Duration) (token, sessionID string, err error) {
	key, err := t.keys.SigningKey()
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	claims := &SessionClaims{
		Parent: parent,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	if len(sessionPolicy) > 0 {
		claims.SessionPolicy = base64.StdEncoding.EncodeToString(sessionPolicy)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, claims.ID, nil
}

// Verify validates a session token and returns its claims.
//
// Every verification key from the provider is tried in order, so tokens
// signed under a rotated-out key remain valid within the grace window.
// Error mapping:
//   - expired token           -> ErrCredentialExpired
//   - malformed token         -> ErrInvalidCredential
//   - signature mismatch      -> ErrInvalidCredential
//   - unexpected signing alg  -> ErrInvalidCredential
func (t *TokenIssuer) Verify(token string) (*SessionClaims, error) {
	keys := t.keys.VerificationKeys()
	if len(keys) == 0 {
		return nil, ErrNoSigningKey
	}

	var lastErr error
	for _, key := range keys {
		claims := &SessionClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
			}
			return key, nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err == nil && parsed.Valid {
			if claims.Parent == "" || claims.Role == "" || claims.ID == "" {
				return nil, fmt.Errorf("%w: incomplete session claims", ErrInvalidCredential)
			}
			return claims, nil
		}

		// An expired-but-correctly-signed token is a definitive answer;
		// trying further keys cannot resurrect it.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredential, lastErr.Error())
	}
	return nil, ErrInvalidCredential
}
