// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/alimy/rustfs/internal/logging"
)

// BreakerConfig tunes the circuit breaker around a backing store.
type BreakerConfig struct {
	// MaxFailures is the consecutive-failure count that opens the breaker.
	MaxFailures uint32

	// Timeout is how long the breaker stays open before allowing a probe.
	Timeout time.Duration
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// BreakerStore decorates any API with a circuit breaker so a failing disk
// or remote store fails fast instead of stalling every refresh and
// mutation. While the breaker is open, operations return ErrUnavailable
// immediately and the last-known-good snapshot keeps serving reads.
type BreakerStore struct {
	inner  API
	loads  *gobreaker.CircuitBreaker[[]Record]
	writes *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerStore wraps inner with a circuit breaker. Reads and writes
// trip independently: a stream of failed writes must not block snapshot
// reloads that might still succeed.
func NewBreakerStore(inner API, cfg BreakerConfig) *BreakerStore {
	if cfg.MaxFailures == 0 {
		cfg = DefaultBreakerConfig()
	}

	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name,
			Timeout: cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.MaxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("IAM store circuit breaker state change")
			},
		}
	}

	return &BreakerStore{
		inner:  inner,
		loads:  gobreaker.NewCircuitBreaker[[]Record](settings("iam-store-reads")),
		writes: gobreaker.NewCircuitBreaker[struct{}](settings("iam-store-writes")),
	}
}

// LoadAll delegates through the read breaker.
func (b *BreakerStore) LoadAll(ctx context.Context) ([]Record, error) {
	records, err := b.loads.Execute(func() ([]Record, error) {
		return b.inner.LoadAll(ctx)
	})
	return records, mapBreakerErr(err)
}

// Save delegates through the write breaker.
func (b *BreakerStore) Save(ctx context.Context, rec Record) error {
	_, err := b.writes.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Save(ctx, rec)
	})
	return mapBreakerErr(err)
}

// Delete delegates through the write breaker. ErrNotFound does not count
// as a store failure and does not trip the breaker.
func (b *BreakerStore) Delete(ctx context.Context, kind Kind, name string) error {
	var notFound bool
	_, err := b.writes.Execute(func() (struct{}, error) {
		err := b.inner.Delete(ctx, kind, name)
		if errors.Is(err, ErrNotFound) {
			// Absence is an answer, not an outage.
			notFound = true
			return struct{}{}, nil
		}
		return struct{}{}, err
	})
	if err != nil {
		return mapBreakerErr(err)
	}
	if notFound {
		return ErrNotFound
	}
	return nil
}

// Close closes the inner store.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

// mapBreakerErr folds breaker-open errors into the store's taxonomy.
func mapBreakerErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
	}
	return err
}
