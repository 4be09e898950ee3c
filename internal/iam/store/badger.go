// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// iamKeyPrefix namespaces every IAM record inside the badger keyspace.
const iamKeyPrefix = "iam/"

// envelope is the on-disk form of a record: metadata in the clear, the
// payload sealed.
type envelope struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Sealed    []byte    `json:"sealed"`
}

// BadgerStore implements API on BadgerDB with payloads sealed at rest.
// On-disk databases are opened with synchronous writes so a committed
// Update is durable before it returns.
type BadgerStore struct {
	db     *badger.DB
	sealer Sealer
}

// NewBadgerStore opens (or creates) the badger database in dir. A nil
// sealer defaults to NoopSealer; production configurations pass the
// encryption collaborator.
func NewBadgerStore(dir string, inMemory bool, sealer Sealer) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithSyncWrites(true).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	if sealer == nil {
		sealer = NoopSealer{}
	}
	return &BadgerStore{db: db, sealer: sealer}, nil
}

// NewBadgerStoreWithDB wraps an already-open badger database. The caller
// retains ownership of the database lifecycle.
func NewBadgerStoreWithDB(db *badger.DB, sealer Sealer) *BadgerStore {
	if sealer == nil {
		sealer = NoopSealer{}
	}
	return &BadgerStore{db: db, sealer: sealer}
}

func recordKey(kind Kind, name string) []byte {
	return []byte(iamKeyPrefix + string(kind) + "/" + name)
}

// LoadAll reads every IAM record in one prefix scan.
func (s *BadgerStore) LoadAll(ctx context.Context) ([]Record, error) {
	var records []Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(iamKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			kind, name, ok := splitRecordKey(item.Key())
			if !ok {
				continue
			}

			var rec Record
			err := item.Value(func(val []byte) error {
				var env envelope
				if err := json.Unmarshal(val, &env); err != nil {
					return fmt.Errorf("decode envelope %s/%s: %w", kind, name, err)
				}
				data, err := s.sealer.Unseal(env.Sealed)
				if err != nil {
					return fmt.Errorf("unseal %s/%s: %w", kind, name, err)
				}
				rec = Record{
					Kind:      kind,
					Name:      name,
					Version:   env.Version,
					UpdatedAt: env.UpdatedAt,
					Data:      data,
				}
				return nil
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	return records, nil
}

// Save durably writes one record.
func (s *BadgerStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sealed, err := s.sealer.Seal(rec.Data)
	if err != nil {
		return err
	}
	env := envelope{
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
		Sealed:    sealed,
	}
	if env.UpdatedAt.IsZero() {
		env.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.Kind, rec.Name), raw)
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	return nil
}

// Delete durably removes a record.
func (s *BadgerStore) Delete(ctx context.Context, kind Kind, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(kind, name)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// splitRecordKey parses "iam/<kind>/<name>" keys. Name segments may
// themselves contain '/', so only the first two separators split.
func splitRecordKey(key []byte) (Kind, string, bool) {
	rest, ok := strings.CutPrefix(string(key), iamKeyPrefix)
	if !ok {
		return "", "", false
	}
	kind, name, found := strings.Cut(rest, "/")
	if !found || name == "" {
		return "", "", false
	}
	return Kind(kind), name, true
}
