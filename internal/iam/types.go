// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package iam

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/alimy/rustfs/internal/iam/auth"
	"github.com/alimy/rustfs/internal/iam/policy"
)

// recordFormatVersion is the version stamped into persisted IAM records.
const recordFormatVersion = 1

// UserIdentity is the persisted form of a user's credentials and status.
type UserIdentity struct {
	Version     int              `json:"version"`
	Credentials auth.Credentials `json:"credentials"`
}

func newUserIdentity(creds auth.Credentials) UserIdentity {
	return UserIdentity{Version: recordFormatVersion, Credentials: creds}
}

// GroupInfo is the persisted form of a group: status plus member
// principal ids. Membership is many-to-many; the user->groups index is
// derived at snapshot build time, never persisted.
type GroupInfo struct {
	Version int      `json:"version"`
	Status  string   `json:"status"`
	Members []string `json:"members"`
}

func newGroupInfo(members []string) GroupInfo {
	return GroupInfo{Version: recordFormatVersion, Status: auth.StatusEnabled, Members: members}
}

// RoleInfo is the persisted form of a role: a policy bundle assumable by
// trusted principals to produce a temporary session.
type RoleInfo struct {
	Version int    `json:"version"`
	Name    string `json:"name"`

	// PolicyNames is the role's policy bundle.
	PolicyNames []string `json:"policyNames"`

	// MaxSessionDuration caps sessions assumed from this role.
	MaxSessionDuration time.Duration `json:"maxSessionDuration"`

	// TrustedPrincipals lists the principal ids that may assume the role.
	// A single "*" entry trusts every known principal.
	TrustedPrincipals []string `json:"trustedPrincipals"`
}

// Trusts reports whether the principal may assume the role. An empty
// trust list trusts no one.
func (r RoleInfo) Trusts(principal string) bool {
	for _, p := range r.TrustedPrincipals {
		if p == "*" || p == principal {
			return true
		}
	}
	return false
}

// MappedPolicy is the persisted set of policy names attached to a user,
// service account or group.
type MappedPolicy struct {
	Version  int      `json:"version"`
	Policies []string `json:"policies"`
}

// contains reports whether the mapping already carries the policy name.
func (m MappedPolicy) contains(name string) bool {
	for _, p := range m.Policies {
		if p == name {
			return true
		}
	}
	return false
}

// ServiceAccountInfo is the persisted form of a service account: derived
// credentials plus an optional embedded policy that narrows the parent's
// permissions.
type ServiceAccountInfo struct {
	Version     int              `json:"version"`
	Credentials auth.Credentials `json:"credentials"`

	// Policy is the optional embedded policy document (raw JSON). When
	// empty the service account inherits the parent's effective policy.
	Policy json.RawMessage `json:"policy,omitempty"`
}

// SessionRecord is the persisted stub for one issued session: issuance
// bookkeeping plus in-place revocation. Verification of the token itself
// never needs this record; it exists so sessions can be revoked before
// natural expiry and counted for delete-user referential checks.
type SessionRecord struct {
	Version   int       `json:"version"`
	SessionID string    `json:"sessionId"`
	Parent    string    `json:"parent"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	RevokedAt time.Time `json:"revokedAt,omitempty"`
}

// Revoked reports whether the session has been administratively revoked.
func (s SessionRecord) Revoked() bool {
	return !s.RevokedAt.IsZero()
}

// Live reports whether the session is neither revoked nor expired at now.
func (s SessionRecord) Live(now time.Time) bool {
	return !s.Revoked() && s.ExpiresAt.After(now)
}

// AccessRequest is one authorization question: the credential identity as
// resolved by the upstream signature-verification layer, the requested
// action and canonical resource, and the request context for condition
// evaluation.
type AccessRequest struct {
	AccessKey    string
	SessionToken string
	Action       policy.Action
	Resource     string

	// ConditionValues carries request context such as source IP, request
	// time, and tags, keyed by condition context key.
	ConditionValues map[string][]string
}

// Decision is the authorization engine's answer. Reason is a coarse code
// for metrics and audit; it is never detailed enough to disclose which
// statement or policy produced a deny.
type Decision struct {
	Allowed bool
	Reason  string

	// MatchedSIDs lists the statement ids that matched during evaluation,
	// recorded for audit.
	MatchedSIDs []string
}

// allow builds an allowed decision.
func allow(matched []string) Decision {
	return Decision{Allowed: true, MatchedSIDs: matched}
}

// deny builds a denied decision with a reason code.
func deny(reason string, matched ...string) Decision {
	return Decision{Allowed: false, Reason: reason, MatchedSIDs: matched}
}
