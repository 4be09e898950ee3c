// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package config provides layered configuration for the RustFS IAM core.
//
// Configuration is resolved in priority order: struct defaults, then an
// optional YAML config file, then RUSTFS_-prefixed environment variables.
// Loading is implemented with koanf (see koanf.go); validation runs after
// all layers are merged so that a partially-specified file cannot leave the
// process with an unusable configuration.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors returned by Config.Validate.
var (
	// ErrShortTokenKey is returned when the session token signing key is
	// below the minimum length for HS256.
	ErrShortTokenKey = errors.New("token signing key must be at least 32 characters")

	// ErrBadRefreshInterval is returned for a non-positive snapshot refresh interval.
	ErrBadRefreshInterval = errors.New("iam refresh interval must be positive")

	// ErrBadSessionDuration is returned when session duration bounds are inconsistent.
	ErrBadSessionDuration = errors.New("token default session duration exceeds maximum")
)

// Config is the root configuration for the IAM core.
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Store   StoreConfig   `koanf:"store"`
	IAM     IAMConfig     `koanf:"iam"`
	Token   TokenConfig   `koanf:"token"`
	Audit   AuditConfig   `koanf:"audit"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// MetricsConfig controls the observability HTTP endpoint.
type MetricsConfig struct {
	// Enabled exposes /metrics and /healthz on Addr.
	Enabled bool `koanf:"enabled"`

	// Addr is the listen address for the observability server.
	Addr string `koanf:"addr"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`
}

// StoreConfig controls the backing store for durable IAM records.
type StoreConfig struct {
	// Dir is the badger database directory.
	Dir string `koanf:"dir"`

	// InMemory runs badger without disk persistence. Test use only.
	InMemory bool `koanf:"in_memory"`

	// SealKey is the 32-byte (hex or raw) key used to seal records at rest.
	// Empty disables sealing; production deployments supply a key from the
	// platform key-management collaborator.
	SealKey string `koanf:"seal_key"`

	// BreakerEnabled wraps store access in a circuit breaker so that a
	// misbehaving disk cannot stall every refresh attempt.
	BreakerEnabled bool `koanf:"breaker_enabled"`

	// BreakerMaxFailures is the consecutive-failure count that opens the breaker.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// IAMConfig controls the in-memory identity store and authorization engine.
type IAMConfig struct {
	// RefreshInterval is the period of the full snapshot reload.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RootAccessKey, if set, names a credential that is flagged as
	// administrative in every snapshot and bypasses statement evaluation.
	RootAccessKey string `koanf:"root_access_key"`

	// RootSecretKey is the secret for the root credential.
	RootSecretKey string `koanf:"root_secret_key"`

	// DeleteCascadesSessions controls principal deletion when live sessions
	// exist: true revokes them as part of the delete, false rejects the
	// delete. Default: true (cascade).
	DeleteCascadesSessions bool `koanf:"delete_cascades_sessions"`

	// DecisionCacheSize is the entry capacity of the authorization decision
	// cache. Zero disables the cache.
	DecisionCacheSize int `koanf:"decision_cache_size"`

	// DecisionCacheTTL bounds how stale a cached decision may be.
	DecisionCacheTTL time.Duration `koanf:"decision_cache_ttl"`
}

// TokenConfig controls session-token signing.
type TokenConfig struct {
	// SigningKey is the active HS256 key for session tokens.
	SigningKey string `koanf:"signing_key"`

	// PreviousKeys are still-valid prior signing keys accepted for
	// verification during the rotation grace window.
	PreviousKeys []string `koanf:"previous_keys"`

	// RotationGrace is how long tokens signed under a previous key remain
	// verifiable after rotation.
	RotationGrace time.Duration `koanf:"rotation_grace"`

	// DefaultSessionDuration applies when AssumeRole does not request one.
	DefaultSessionDuration time.Duration `koanf:"default_session_duration"`

	// MaxSessionDuration caps requested session durations globally; each
	// role may set a lower cap.
	MaxSessionDuration time.Duration `koanf:"max_session_duration"`
}

// AuditConfig controls the buffered decision audit logger.
type AuditConfig struct {
	Enabled       bool          `koanf:"enabled"`
	LogAllowed    bool          `koanf:"log_allowed"`
	LogDenied     bool          `koanf:"log_denied"`
	SampleRate    float64       `koanf:"sample_rate"`
	BufferSize    int           `koanf:"buffer_size"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// defaultConfig returns a Config with all defaults applied. These are
// merged first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Dir:                "/var/lib/rustfs/iam",
			InMemory:           false,
			BreakerEnabled:     true,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		IAM: IAMConfig{
			RefreshInterval:        5 * time.Minute,
			DeleteCascadesSessions: true,
			DecisionCacheSize:      10000,
			DecisionCacheTTL:       time.Minute,
		},
		Token: TokenConfig{
			RotationGrace:          24 * time.Hour,
			DefaultSessionDuration: time.Hour,
			MaxSessionDuration:     12 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Audit: AuditConfig{
			Enabled:       true,
			LogAllowed:    false,
			LogDenied:     true,
			SampleRate:    1.0,
			BufferSize:    1000,
			FlushInterval: 5 * time.Second,
		},
	}
}

// Validate checks the merged configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Token.SigningKey != "" && len(c.Token.SigningKey) < 32 {
		return ErrShortTokenKey
	}
	for i, k := range c.Token.PreviousKeys {
		if len(k) < 32 {
			return fmt.Errorf("token previous_keys[%d]: %w", i, ErrShortTokenKey)
		}
	}
	if c.IAM.RefreshInterval <= 0 {
		return ErrBadRefreshInterval
	}
	if c.Token.DefaultSessionDuration > c.Token.MaxSessionDuration {
		return ErrBadSessionDuration
	}
	if c.Audit.SampleRate < 0 || c.Audit.SampleRate > 1 {
		return fmt.Errorf("audit sample_rate %f outside [0,1]", c.Audit.SampleRate)
	}
	if (c.IAM.RootAccessKey == "") != (c.IAM.RootSecretKey == "") {
		return errors.New("iam root_access_key and root_secret_key must be set together")
	}
	return nil
}
