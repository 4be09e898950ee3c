// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"iam.yaml",
	"iam.yml",
	"/etc/rustfs/iam.yaml",
	"/etc/rustfs/iam.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "RUSTFS_IAM_CONFIG"

// envPrefix namespaces all environment overrides for the IAM core.
const envPrefix = "RUSTFS_"

// Load resolves configuration using koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if found)
//  3. Environment variables: highest priority, RUSTFS_-prefixed
//
// Precedence is ENV > file > defaults. The merged result is validated
// before being returned; callers never observe a half-valid Config.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile resolves configuration from an explicit file path plus
// environment overrides. Used by tests and by deployments that do not
// rely on the default search paths.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// RUSTFS_IAM_REFRESH_INTERVAL -> iam.refresh_interval
	// RUSTFS_TOKEN_SIGNING_KEY    -> token.signing_key
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps RUSTFS_-prefixed environment variable names to koanf
// config paths. The first underscore-separated segment after the prefix is
// the section; the remainder is the key within it.
//
// Examples:
//   - RUSTFS_LOGGING_LEVEL          -> logging.level
//   - RUSTFS_STORE_DIR              -> store.dir
//   - RUSTFS_IAM_REFRESH_INTERVAL   -> iam.refresh_interval
//   - RUSTFS_TOKEN_SIGNING_KEY      -> token.signing_key
//   - RUSTFS_AUDIT_FLUSH_INTERVAL   -> audit.flush_interval
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	section, rest, found := strings.Cut(key, "_")
	if !found {
		return section
	}
	return section + "." + rest
}
