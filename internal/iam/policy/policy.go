// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

/*
policy.go - Policy Document Model

A Policy is an immutable, versioned list of statements. Evaluation follows
the AWS IAM decision procedure: explicit deny overrides any allow, and a
request no statement matches is implicitly denied. Statements from every
applicable source (direct attachment, group membership, role assumption)
are merged into one document before evaluation, never evaluated
independently and OR'd.
*/

package policy

import (
	"fmt"

	"github.com/goccy/go-json"
)

// DefaultVersion is the policy document version this engine understands.
const DefaultVersion = "2012-10-17"

// Effect is the outcome a statement contributes when it matches.
type Effect string

// Statement effects.
const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// IsValid reports whether the effect is one of the two legal values.
func (e Effect) IsValid() bool {
	return e == Allow || e == Deny
}

// Decision is the tri-state result of evaluating statements against a
// request. NotApplicable means no statement matched; the authorization
// engine collapses it to a deny at its boundary.
type Decision int

// Evaluation decisions.
const (
	NotApplicable Decision = iota
	DecisionAllow
	DecisionDeny
)

// String returns the decision name for logs and audit records.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "Allow"
	case DecisionDeny:
		return "Deny"
	}
	return "NotApplicable"
}

// Statement is a single allow/deny rule.
type Statement struct {
	SID        string      `json:"Sid,omitempty"`
	Effect     Effect      `json:"Effect"`
	Actions    ActionSet   `json:"Action"`
	Resources  ResourceSet `json:"Resource"`
	Conditions Conditions  `json:"Condition,omitempty"`
}

// NewStatement builds a statement without conditions.
func NewStatement(effect Effect, actions ActionSet, resources ResourceSet) Statement {
	return Statement{Effect: effect, Actions: actions, Resources: resources}
}

// Validate checks the statement for structural correctness.
func (s Statement) Validate() error {
	if !s.Effect.IsValid() {
		return fmt.Errorf("invalid effect %q", s.Effect)
	}
	if err := s.Actions.Validate(); err != nil {
		return err
	}
	if err := s.Resources.Validate(); err != nil {
		return err
	}
	return s.Conditions.Validate()
}

// Matches reports whether the statement applies to the request: action
// pattern, resource pattern and every condition must all hold.
func (s Statement) Matches(args Args) bool {
	if !s.Actions.Match(args.Action) {
		return false
	}
	if !s.Resources.Match(args.Resource) {
		return false
	}
	return s.Conditions.Evaluate(args.ConditionValues)
}

// Equals reports whether two statements are semantically identical.
func (s Statement) Equals(other Statement) bool {
	if s.Effect != other.Effect {
		return false
	}
	if !s.Actions.Equals(other.Actions) {
		return false
	}
	if !s.Resources.Equals(other.Resources) {
		return false
	}
	if len(s.Conditions) != len(other.Conditions) {
		return false
	}
	for op, keys := range s.Conditions {
		otherKeys, ok := other.Conditions[op]
		if !ok || len(keys) != len(otherKeys) {
			return false
		}
		for key, values := range keys {
			otherValues, ok := otherKeys[key]
			if !ok || !stringSlicesEqual(values, otherValues) {
				return false
			}
		}
	}
	return true
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}

// Policy is an ordered set of statements. Policies are immutable once
// stored under a given ID and version; updates create a new version so a
// concurrent evaluation never observes a half-written document.
type Policy struct {
	ID         string      `json:"ID,omitempty"`
	Version    string      `json:"Version"`
	Statements []Statement `json:"Statement"`
}

// ParsePolicy decodes and validates a JSON policy document.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("malformed policy document: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// MarshalJSON is provided by the embedded field tags; Policy serializes to
// the standard document grammar.

// Validate checks the document version and every statement.
func (p Policy) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("policy document missing version")
	}
	if p.Version != DefaultVersion {
		return fmt.Errorf("unsupported policy version %q", p.Version)
	}
	if len(p.Statements) == 0 {
		return fmt.Errorf("policy document has no statements")
	}
	for i, s := range p.Statements {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// IsEmpty reports whether the policy carries no statements.
func (p Policy) IsEmpty() bool {
	return len(p.Statements) == 0
}

// Evaluate runs the deny-overrides decision procedure over the policy's
// statements. An explicit deny wins regardless of how many allows also
// match; no match at all yields NotApplicable.
func (p Policy) Evaluate(args Args) Decision {
	return EvaluateStatements(p.Statements, args)
}

// IsAllowed reports whether the policy explicitly allows the request.
func (p Policy) IsAllowed(args Args) bool {
	return p.Evaluate(args) == DecisionAllow
}

// Equals reports whether two policies carry the same statements in the
// same order. Used for idempotence checks on attach.
func (p Policy) Equals(other Policy) bool {
	if len(p.Statements) != len(other.Statements) {
		return false
	}
	for i := range p.Statements {
		if !p.Statements[i].Equals(other.Statements[i]) {
			return false
		}
	}
	return true
}

// Merge returns a policy combining the statements of p and others, in
// order. The result is what evaluation must run against when a principal
// holds multiple policies.
func (p Policy) Merge(others ...Policy) Policy {
	merged := Policy{Version: DefaultVersion}
	merged.Statements = append(merged.Statements, p.Statements...)
	for _, o := range others {
		merged.Statements = append(merged.Statements, o.Statements...)
	}
	return merged
}

// EvaluateStatements applies the decision rule to an already-merged
// statement list:
//
//  1. any matching Deny statement -> DecisionDeny
//  2. otherwise any matching Allow statement -> DecisionAllow
//  3. otherwise -> NotApplicable (implicit deny at the engine boundary)
func EvaluateStatements(statements []Statement, args Args) Decision {
	decision := NotApplicable
	for _, s := range statements {
		if !s.Matches(args) {
			continue
		}
		if s.Effect == Deny {
			return DecisionDeny
		}
		decision = DecisionAllow
	}
	return decision
}

// EvaluateStatementsWithMatches is EvaluateStatements plus the SIDs of the
// statements that matched, for audit recording. The SID list covers every
// matching statement, not only the deciding one.
func EvaluateStatementsWithMatches(statements []Statement, args Args) (Decision, []string) {
	decision := NotApplicable
	var matched []string
	for _, s := range statements {
		if !s.Matches(args) {
			continue
		}
		if s.SID != "" {
			matched = append(matched, s.SID)
		}
		if s.Effect == Deny {
			decision = DecisionDeny
			continue
		}
		if decision != DecisionDeny {
			decision = DecisionAllow
		}
	}
	return decision, matched
}

// Intersect combines a base decision with a narrowing decision, used for
// session policies: a session can only narrow, never widen, the role's
// permissions. The result allows only when both allow; an explicit deny on
// either side is preserved.
func Intersect(base, narrowing Decision) Decision {
	if base == DecisionDeny || narrowing == DecisionDeny {
		return DecisionDeny
	}
	if base == DecisionAllow && narrowing == DecisionAllow {
		return DecisionAllow
	}
	return NotApplicable
}
