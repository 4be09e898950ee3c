// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package main is the entry point for the RustFS IAM daemon.
//
// The daemon owns the identity and access management core for a RustFS
// deployment: principals, policies, roles and sessions, persisted in an
// embedded badger store and served from an immutable in-memory snapshot.
//
// # Application Architecture
//
// Startup proceeds in order:
//
//  1. Configuration: koanf-layered defaults, YAML file, RUSTFS_ env vars
//  2. Logging: zerolog, json or console format
//  3. Backing store: badger (optionally sealed at rest, behind a breaker)
//  4. Token issuer: HS256 session tokens with key-rotation grace
//  5. IAM system: snapshot build, authorization engine, mutation path
//  6. Supervision tree: snapshot refresher and observability HTTP server
//
// # Configuration
//
// All settings can come from a YAML file (iam.yaml, or the path in
// RUSTFS_IAM_CONFIG) or from RUSTFS_-prefixed environment variables,
// e.g. RUSTFS_TOKEN_SIGNING_KEY, RUSTFS_STORE_DIR, RUSTFS_IAM_ROOT_ACCESS_KEY.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the refresher and the
// observability server stop, pending audit events flush, and the store
// closes cleanly.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alimy/rustfs/internal/config"
	"github.com/alimy/rustfs/internal/iam"
	"github.com/alimy/rustfs/internal/iam/auth"
	"github.com/alimy/rustfs/internal/iam/store"
	"github.com/alimy/rustfs/internal/logging"
	"github.com/alimy/rustfs/internal/supervisor"
	"github.com/alimy/rustfs/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("store_dir", cfg.Store.Dir).
		Bool("store_in_memory", cfg.Store.InMemory).
		Dur("refresh_interval", cfg.IAM.RefreshInterval).
		Bool("audit_enabled", cfg.Audit.Enabled).
		Msg("Starting RustFS IAM daemon")

	backing, err := buildStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open backing store")
	}
	defer func() {
		if err := backing.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing backing store")
		}
	}()

	issuer, err := buildIssuer(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token issuer")
	}

	sys, err := iam.New(iam.Options{
		Store:  backing,
		Issuer: issuer,
		IAM:    cfg.IAM,
		Token:  cfg.Token,
		Audit:  cfg.Audit,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize IAM system")
	}
	defer sys.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddIAMService(iam.NewRefresher(sys, cfg.IAM.RefreshInterval))

	if cfg.Metrics.Enabled {
		server := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           observabilityMux(sys),
			ReadHeaderTimeout: 5 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, "observability", 10*time.Second))
		logging.Info().Str("addr", cfg.Metrics.Addr).Msg("Observability endpoint enabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("IAM daemon stopped gracefully")
}

// buildStore opens the badger store with the configured sealer and wraps
// it in a circuit breaker when enabled.
func buildStore(cfg *config.Config) (store.API, error) {
	var sealer store.Sealer = store.NoopSealer{}
	if cfg.Store.SealKey != "" {
		s, err := store.NewAEADSealer(cfg.Store.SealKey)
		if err != nil {
			return nil, err
		}
		sealer = s
	} else if !cfg.Store.InMemory {
		logging.Warn().Msg("No seal key configured; IAM records are stored unencrypted")
	}

	backing, err := store.NewBadgerStore(cfg.Store.Dir, cfg.Store.InMemory, sealer)
	if err != nil {
		return nil, err
	}

	if !cfg.Store.BreakerEnabled {
		return backing, nil
	}
	return store.NewBreakerStore(backing, store.BreakerConfig{
		MaxFailures: cfg.Store.BreakerMaxFailures,
		Timeout:     cfg.Store.BreakerTimeout,
	}), nil
}

// buildIssuer assembles the rotating key provider from configuration. A
// missing signing key gets an ephemeral random one, which keeps local
// development working but invalidates all sessions on restart.
func buildIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	signing := []byte(cfg.Token.SigningKey)
	if len(signing) == 0 {
		signing = make([]byte, 32)
		if _, err := rand.Read(signing); err != nil {
			return nil, err
		}
		logging.Warn().Msg("No token signing key configured; using an ephemeral key, sessions will not survive restart")
	}

	previous := make([][]byte, 0, len(cfg.Token.PreviousKeys))
	for _, k := range cfg.Token.PreviousKeys {
		previous = append(previous, []byte(k))
	}

	keys := auth.NewRotatingKeyProvider(signing, previous, cfg.Token.RotationGrace)
	return auth.NewTokenIssuer(keys), nil
}

// observabilityMux serves prometheus metrics and a liveness probe that
// reports the published snapshot generation.
func observabilityMux(sys *iam.Sys) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		snap := sys.Current()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","generation":` +
			strconv.FormatUint(snap.Generation, 10) + `}`))
	})
	return mux
}
