// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package store

import (
	"context"
	"errors"
	"time"
)

// Store errors.
var (
	// ErrNotFound is returned when the named record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable is returned when the backing store cannot serve the
	// request, including when the circuit breaker is open.
	ErrUnavailable = errors.New("backing store unavailable")
)

// Kind discriminates the durable IAM record types. One record per object,
// keyed by (kind, name).
type Kind string

// Record kinds.
const (
	KindUser           Kind = "user"
	KindServiceAccount Kind = "svcacct"
	KindGroup          Kind = "group"
	KindRole           Kind = "role"
	KindPolicy         Kind = "policy"
	KindUserPolicy     Kind = "user-policy"
	KindGroupPolicy    Kind = "group-policy"

	// KindSession records session issuance and revocation: one stub per
	// issued session, marked revoked in place. Expired stubs are ignored
	// by snapshot builds and eventually compacted.
	KindSession Kind = "session"
)

// Record is one durable IAM object. Data is the record's JSON payload; it
// is sealed at rest by the store's Sealer and presented unsealed to
// callers.
type Record struct {
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Data      []byte    `json:"data"`
}

// API is the contract the IAM core requires from the durable backing
// store. Save and Delete must be durable before they return: the store is
// the source of truth, and the in-memory snapshot is rebuilt from it.
type API interface {
	// LoadAll returns every IAM record in one batch read, for full
	// snapshot rebuilds.
	LoadAll(ctx context.Context) ([]Record, error)

	// Save durably writes one record, overwriting any previous version
	// under the same (kind, name).
	Save(ctx context.Context, rec Record) error

	// Delete durably removes the record. Deleting an absent record
	// returns ErrNotFound.
	Delete(ctx context.Context, kind Kind, name string) error

	// Close releases store resources.
	Close() error
}
