// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package iam implements the identity and access management core:
// principals, policies, roles, sessions and the authorization engine
// that every data-path request consults.
//
// All read-path state lives in one immutable Snapshot published behind
// an atomic pointer. Authorization loads the pointer once and evaluates
// entirely against that version, so a request never observes a half
// applied change. Mutations write through to the backing store first,
// then rebuild and publish a fresh snapshot.
//
// Evaluation follows deny-overrides semantics: an explicit deny in any
// applicable statement wins over any allow, and a request matching no
// statement is denied. Session tokens and service-account embedded
// policies can only narrow the base permissions, never widen them.
package iam
