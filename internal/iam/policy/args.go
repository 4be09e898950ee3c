// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package policy

// Args carries one authorization request into policy evaluation. All fields
// are immutable values; evaluation never mutates its input.
type Args struct {
	// AccountName is the principal id the request resolved to.
	AccountName string

	// Action is the concrete API action being requested.
	Action Action

	// Resource is the canonical "bucket/object" target.
	Resource string

	// ConditionValues carries request context for condition evaluation:
	// source IP, request time, prefix, tags. Keys follow the AWS context
	// key convention ("aws:SourceIp", "aws:CurrentTime", "s3:prefix").
	ConditionValues map[string][]string

	// IsOwner is set for the flagged administrative principal; statement
	// evaluation is bypassed upstream when it is true.
	IsOwner bool

	// Claims carries verified session-token claims for temporary
	// credentials, empty for long-term credentials.
	Claims map[string]interface{}
}
