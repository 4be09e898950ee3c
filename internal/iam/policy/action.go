// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package policy

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// Action is a single S3 API action name, e.g. "s3:GetObject". Statement
// action patterns may carry wildcards ("s3:Get*", "s3:*").
type Action string

// Common S3 actions referenced by the built-in policies. The set is not
// exhaustive; any "s3:"-prefixed name is accepted in policy documents.
const (
	AllActions          Action = "s3:*"
	GetObjectAction     Action = "s3:GetObject"
	PutObjectAction     Action = "s3:PutObject"
	DeleteObjectAction  Action = "s3:DeleteObject"
	ListBucketAction    Action = "s3:ListBucket"
	GetBucketLocation   Action = "s3:GetBucketLocation"
	ListAllMyBuckets    Action = "s3:ListAllMyBuckets"
	CreateBucketAction  Action = "s3:CreateBucket"
	DeleteBucketAction  Action = "s3:DeleteBucket"
	AbortMultipartUpload Action = "s3:AbortMultipartUpload"
	ListMultipartUploads Action = "s3:ListBucketMultipartUploads"
)

// Administrative actions covering the server diagnostics surface,
// referenced by the built-in diagnostics policy.
const (
	ServerInfoAction  Action = "admin:ServerInfo"
	HealthInfoAction  Action = "admin:HealthInfo"
	ProfilingAction   Action = "admin:Profiling"
	ServerTraceAction Action = "admin:ServerTrace"
	ConsoleLogAction  Action = "admin:ConsoleLog"
	PrometheusAction  Action = "admin:Prometheus"
)

// IsValid reports whether the action is well-formed: a non-empty name,
// optionally containing wildcards. A bare "*" is accepted as shorthand
// for all actions.
func (a Action) IsValid() bool {
	return a != ""
}

// Match reports whether the pattern action a matches the concrete
// requested action. Matching is case-sensitive wildcard matching, so
// "s3:Get*" matches "s3:GetObject" but not "s3:getobject".
func (a Action) Match(requested Action) bool {
	return wildcardMatch(string(a), string(requested))
}

// ActionSet is a set of action patterns attached to a statement.
type ActionSet map[Action]struct{}

// NewActionSet builds an ActionSet from the given actions.
func NewActionSet(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// Match reports whether any pattern in the set matches the requested action.
func (s ActionSet) Match(requested Action) bool {
	for a := range s {
		if a.Match(requested) {
			return true
		}
	}
	return false
}

// Equals reports whether both sets contain exactly the same patterns.
func (s ActionSet) Equals(other ActionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for a := range s {
		if _, ok := other[a]; !ok {
			return false
		}
	}
	return true
}

// Validate checks that every member is a well-formed action.
func (s ActionSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("statement has no actions")
	}
	for a := range s {
		if !a.IsValid() {
			return fmt.Errorf("invalid action %q", a)
		}
	}
	return nil
}

// slice returns the members sorted for deterministic serialization.
func (s ActionSet) slice() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the set as a JSON array of action strings.
func (s ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.slice())
}

// UnmarshalJSON accepts either a single action string or an array of
// action strings, per the AWS policy grammar.
func (s *ActionSet) UnmarshalJSON(data []byte) error {
	var single Action
	if err := json.Unmarshal(data, &single); err == nil {
		*s = NewActionSet(single)
		return nil
	}

	var many []Action
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("invalid action list: %w", err)
	}
	if len(many) == 0 {
		return fmt.Errorf("empty action list")
	}
	*s = NewActionSet(many...)
	return nil
}
