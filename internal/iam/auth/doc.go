// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package auth implements the credential codec for the IAM core: long-term
// access-key/secret-key pairs, temporary session credentials carried as
// signed JWTs, and the signing-key provider contract with rotation grace.
//
// Credentials are tagged values discriminated by their fields (SessionToken
// and Expiration for sessions, ParentUser and ServiceAccount for service
// accounts) rather than by subtype; a single validation contract covers
// every kind.
//
// Request-signature verification (HMAC SigV4) is an upstream collaborator.
// This package only consumes the access-key identity and optional session
// token that layer resolves.
package auth
