// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package iam

import "errors"

// IAM error taxonomy. Credential and authorization failures surface to
// request callers as a deny decision plus a reason code, never as a fatal
// condition; the sentinels below are for the administrative mutation path
// and the refresh scheduler, where a failure is an explicit outcome the
// caller must handle.
var (
	// ErrInvalidCredential covers malformed tokens and signature mismatches.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrCredentialExpired is returned for an expired session token.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrCredentialRevoked is returned for a session revoked before its
	// natural expiry.
	ErrCredentialRevoked = errors.New("credential revoked")

	// ErrUnknownOrDisabledPrincipal is returned when the principal does not
	// exist in the current snapshot or is disabled.
	ErrUnknownOrDisabledPrincipal = errors.New("unknown or disabled principal")

	// ErrPolicyNotFound is returned when a named policy does not exist.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrUserExists is returned when creating a principal under a taken name.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when the named principal does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrGroupNotFound is returned when the named group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrRoleNotFound is returned when the named role does not exist.
	ErrRoleNotFound = errors.New("role not found")

	// ErrSessionNotFound is returned when revoking an unknown session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrReferentialIntegrity is returned when a mutation would orphan
	// referencing objects, e.g. deleting a policy that is still attached or
	// deleting a principal with live sessions when cascade is disabled.
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	// ErrNotAssumable is returned when a principal is not trusted to
	// assume the requested role.
	ErrNotAssumable = errors.New("principal may not assume role")

	// ErrBackingStoreUnavailable wraps backing-store failures surfaced to
	// mutation callers and the refresh scheduler.
	ErrBackingStoreUnavailable = errors.New("backing store unavailable")

	// ErrSnapshotBuildFailed is returned when a loaded record set cannot be
	// resolved into a consistent snapshot. The previous snapshot stays
	// published.
	ErrSnapshotBuildFailed = errors.New("snapshot build failed")
)

// Deny reason codes carried on authorization decisions. The code
// distinguishes credential-level failures for metrics and audit; the
// response to the requester stays a generic deny so the resource's policy
// configuration is not disclosed.
const (
	ReasonNone                       = ""
	ReasonInvalidCredential          = "InvalidCredential"
	ReasonCredentialExpired          = "CredentialExpired"
	ReasonCredentialRevoked          = "CredentialRevoked"
	ReasonUnknownOrDisabledPrincipal = "UnknownOrDisabledPrincipal"
	ReasonNoMatchingStatement        = "NoMatchingStatement"
	ReasonExplicitDeny               = "ExplicitDeny"
	ReasonSessionPolicyDeny          = "SessionPolicyDeny"
)
