// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

// Credential status values.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// Key generation parameters. Access keys are identifiers and use an
// unambiguous uppercase alphabet; secret keys are high-entropy secrets and
// never derivable from the access key.
const (
	accessKeyLength = 20
	secretKeyLength = 40

	accessKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
	secretKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
)

// Credential codec errors.
var (
	// ErrInvalidCredential is returned for malformed credentials or tokens
	// and for signature mismatches.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrCredentialExpired is returned when a temporary credential's expiry
	// has passed.
	ErrCredentialExpired = errors.New("credential expired")
)

// Credentials is a long-term access-key/secret-key pair, a temporary
// session credential, or a service-account credential, discriminated by
// the presence of SessionToken and ParentUser rather than by subtype.
type Credentials struct {
	AccessKey    string    `json:"accessKey"`
	SecretKey    string    `json:"secretKey"`
	SessionToken string    `json:"sessionToken,omitempty"`
	Expiration   time.Time `json:"expiration,omitempty"`
	Status       string    `json:"status"`

	// ParentUser names the identity a session or service account derives
	// from. Empty for regular users.
	ParentUser string `json:"parentUser,omitempty"`

	// ServiceAccount marks credentials created via the service-account
	// path; they inherit the parent's policies unless they embed their own.
	ServiceAccount bool `json:"serviceAccount,omitempty"`
}

// IsExpired reports whether a temporary credential's expiry has passed.
// Long-term credentials never expire.
func (c Credentials) IsExpired() bool {
	if c.Expiration.IsZero() {
		return false
	}
	return c.Expiration.Before(time.Now().UTC())
}

// IsTemp reports whether the credential is a session credential.
func (c Credentials) IsTemp() bool {
	return c.SessionToken != "" && !c.Expiration.IsZero()
}

// IsServiceAccount reports whether the credential belongs to a service
// account.
func (c Credentials) IsServiceAccount() bool {
	return c.ServiceAccount && c.ParentUser != ""
}

// IsValid reports whether the credential is enabled, well-formed and not
// expired.
func (c Credentials) IsValid() bool {
	if c.Status == StatusDisabled {
		return false
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return false
	}
	return !c.IsExpired()
}

// GenerateCredentials returns a fresh enabled long-term key pair using
// crypto/rand. The access key and secret key are generated independently;
// neither is derivable from the other.
func GenerateCredentials() (Credentials, error) {
	accessKey, err := randomString(accessKeyLength, accessKeyAlphabet)
	if err != nil {
		return Credentials{}, fmt.Errorf("generate access key: %w", err)
	}
	secretKey, err := randomString(secretKeyLength, secretKeyAlphabet)
	if err != nil {
		return Credentials{}, fmt.Errorf("generate secret key: %w", err)
	}
	return Credentials{
		AccessKey: accessKey,
		SecretKey: secretKey,
		Status:    StatusEnabled,
	}, nil
}

// randomString draws length characters from alphabet using crypto/rand.
// Alphabet sizes here are powers of two, so modular reduction is unbiased.
func randomString(length int, alphabet string) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
