// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flakyStore is an API stub whose operations fail while failing is true.
type flakyStore struct {
	failing bool
	records []Record
	saves   int
}

func (f *flakyStore) LoadAll(ctx context.Context) ([]Record, error) {
	if f.failing {
		return nil, errors.New("disk error")
	}
	return f.records, nil
}

func (f *flakyStore) Save(ctx context.Context, rec Record) error {
	if f.failing {
		return errors.New("disk error")
	}
	f.saves++
	return nil
}

func (f *flakyStore) Delete(ctx context.Context, kind Kind, name string) error {
	if f.failing {
		return errors.New("disk error")
	}
	return ErrNotFound
}

func (f *flakyStore) Close() error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyStore{failing: true}
	b := NewBreakerStore(inner, BreakerConfig{MaxFailures: 3, Timeout: time.Minute})
	ctx := context.Background()

	// First three failures pass through to the store.
	for i := 0; i < 3; i++ {
		if _, err := b.LoadAll(ctx); err == nil {
			t.Fatalf("load %d: expected error", i)
		}
	}

	// The breaker is open now; the inner store is no longer consulted and
	// callers get ErrUnavailable immediately.
	if _, err := b.LoadAll(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from open breaker, got %v", err)
	}
}

func TestBreakerReadsAndWritesTripIndependently(t *testing.T) {
	inner := &flakyStore{failing: true}
	b := NewBreakerStore(inner, BreakerConfig{MaxFailures: 2, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = b.Save(ctx, Record{Kind: KindUser, Name: "x"})
	}
	if err := b.Save(ctx, Record{Kind: KindUser, Name: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("write breaker should be open, got %v", err)
	}

	// Reads still reach the store even though the write breaker is open.
	inner.failing = false
	if _, err := b.LoadAll(ctx); err != nil {
		t.Errorf("read path should be unaffected, got %v", err)
	}
}

func TestBreakerRecoversAfterTimeout(t *testing.T) {
	inner := &flakyStore{failing: true}
	b := NewBreakerStore(inner, BreakerConfig{MaxFailures: 1, Timeout: 20 * time.Millisecond})
	ctx := context.Background()

	if _, err := b.LoadAll(ctx); err == nil {
		t.Fatal("expected initial failure")
	}
	if _, err := b.LoadAll(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("breaker should be open, got %v", err)
	}

	inner.failing = false
	time.Sleep(30 * time.Millisecond)

	// Half-open probe succeeds and closes the breaker.
	if _, err := b.LoadAll(ctx); err != nil {
		t.Errorf("probe after timeout should succeed, got %v", err)
	}
}

func TestBreakerPreservesNotFound(t *testing.T) {
	inner := &flakyStore{}
	b := NewBreakerStore(inner, BreakerConfig{MaxFailures: 2, Timeout: time.Minute})
	ctx := context.Background()

	// Repeated ErrNotFound must surface unchanged and never open the breaker.
	for i := 0; i < 5; i++ {
		if err := b.Delete(ctx, KindUser, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("delete %d: expected ErrNotFound, got %v", i, err)
		}
	}
	if err := b.Save(ctx, Record{Kind: KindUser, Name: "x"}); err != nil {
		t.Errorf("breaker tripped on not-found deletes: %v", err)
	}
}
