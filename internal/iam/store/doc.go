// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package store defines the durable backing-store contract for IAM
// records and ships two implementations: a BadgerDB store with payloads
// sealed at rest, and a circuit-breaker decorator that fails fast when
// the store is unhealthy.
//
// One durable record per IAM object, keyed by (kind, name), versioned,
// encrypted through the Sealer collaborator. Save and Delete are durable
// before they return; LoadAll is the batch read used for full snapshot
// rebuilds.
package store
