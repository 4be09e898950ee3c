// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package supervisor provides Suture-based process supervision for the
// IAM daemon. Long-running loops register as suture services and are
// restarted with exponential backoff on failure; supervision events are
// logged through the process zerolog logger via a slog bridge.
package supervisor
