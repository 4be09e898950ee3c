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

func newTestStore(t *testing.T, sealer Sealer) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStore("", true, sealer)
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestBadgerStoreSaveLoadDelete(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	rec := Record{
		Kind:      KindUser,
		Name:      "alice",
		Version:   1,
		UpdatedAt: time.Now().UTC(),
		Data:      []byte(`{"accessKey":"alice"}`),
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Kind != KindUser || got.Name != "alice" || string(got.Data) != string(rec.Data) {
		t.Errorf("record round trip mismatch: %+v", got)
	}

	if err := s.Delete(ctx, KindUser, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	records, err = s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll after delete: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty store, got %d records", len(records))
	}
}

func TestBadgerStoreOnDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadgerStore(dir, false, nil)
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	rec := Record{
		Kind:      KindPolicy,
		Name:      "datareader",
		Version:   1,
		UpdatedAt: time.Now().UTC(),
		Data:      []byte(`{"Version":"2012-10-17"}`),
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewBadgerStore(dir, false, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	records, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 || records[0].Name != "datareader" {
		t.Fatalf("expected the saved policy after reopen, got %+v", records)
	}
}

func TestBadgerStoreDeleteMissing(t *testing.T) {
	s := newTestStore(t, nil)
	if err := s.Delete(context.Background(), KindPolicy, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBadgerStoreOverwrite(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	for i, payload := range []string{`{"v":1}`, `{"v":2}`} {
		err := s.Save(ctx, Record{Kind: KindPolicy, Name: "p", Version: i + 1, Data: []byte(payload)})
		if err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	records, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after overwrite, got %d", len(records))
	}
	if string(records[0].Data) != `{"v":2}` {
		t.Errorf("overwrite did not take: %s", records[0].Data)
	}
}

func TestBadgerStoreNameWithSlashes(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	err := s.Save(ctx, Record{Kind: KindGroupPolicy, Name: "team/eng", Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	records, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 || records[0].Name != "team/eng" {
		t.Errorf("slash-bearing name not preserved: %+v", records)
	}
}

func TestBadgerStoreCanceledContext(t *testing.T) {
	s := newTestStore(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Save(ctx, Record{Kind: KindUser, Name: "x", Data: []byte(`{}`)}); err == nil {
		t.Error("Save with canceled context should fail")
	}
}

func TestBadgerStoreSealedAtRest(t *testing.T) {
	sealer, err := NewAEADSealer("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("NewAEADSealer: %v", err)
	}
	s := newTestStore(t, sealer)
	ctx := context.Background()

	plaintext := []byte(`{"secretKey":"hunter2hunter2"}`)
	if err := s.Save(ctx, Record{Kind: KindUser, Name: "alice", Data: plaintext}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if string(records[0].Data) != string(plaintext) {
		t.Error("sealed record did not round trip")
	}

	// Reading the same database through a different key must fail.
	wrongSealer, err := NewAEADSealer("ffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("NewAEADSealer: %v", err)
	}
	wrong := NewBadgerStoreWithDB(s.db, wrongSealer)
	if _, err := wrong.LoadAll(ctx); err == nil {
		t.Error("unsealing with the wrong key should fail")
	}
}

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := NewAEADSealer("some-passphrase-of-any-length")
	if err != nil {
		t.Fatalf("NewAEADSealer: %v", err)
	}

	plaintext := []byte("attack at dawn")
	sealed, err := sealer.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if string(sealed) == string(plaintext) {
		t.Error("sealed output equals plaintext")
	}

	back, err := sealer.Unseal(sealed)
	if err != nil {
		t.Fatalf("Unseal: %v", err)
	}
	if string(back) != string(plaintext) {
		t.Error("unseal did not recover plaintext")
	}

	// Corrupt one ciphertext byte.
	sealed[len(sealed)-1] ^= 0xff
	if _, err := sealer.Unseal(sealed); err == nil {
		t.Error("tampered ciphertext unsealed without error")
	}
}

func TestSplitRecordKey(t *testing.T) {
	kind, name, ok := splitRecordKey([]byte("iam/user/alice"))
	if !ok || kind != KindUser || name != "alice" {
		t.Errorf("splitRecordKey = %v/%v/%v", kind, name, ok)
	}
	if _, _, ok := splitRecordKey([]byte("other/user/alice")); ok {
		t.Error("foreign prefix accepted")
	}
	if _, _, ok := splitRecordKey([]byte("iam/user")); ok {
		t.Error("key without name accepted")
	}
}
