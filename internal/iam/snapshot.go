// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

/*
snapshot.go - Immutable IAM State Snapshot

A Snapshot is the fully-resolved view of all IAM state: every lookup the
authorization engine needs, precomputed from one batch read of the backing
store. Snapshots are built wholesale and published atomically; a reader
holding a snapshot reference sees one complete, self-consistent state for
the duration of its operation, regardless of concurrent refreshes.
*/

package iam

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/alimy/rustfs/internal/iam/auth"
	"github.com/alimy/rustfs/internal/iam/policy"
	"github.com/alimy/rustfs/internal/iam/store"
	"github.com/alimy/rustfs/internal/logging"
)

// Snapshot is an immutable resolved view of all IAM state. All maps are
// written only during buildSnapshot and never mutated afterwards.
type Snapshot struct {
	// Generation increments with every published snapshot.
	Generation uint64

	// BuiltAt is when the build completed.
	BuiltAt time.Time

	policies        map[string]policy.Policy
	users           map[string]auth.Credentials
	serviceAccounts map[string]ServiceAccountInfo
	groups          map[string]GroupInfo
	memberships     map[string][]string
	userPolicies    map[string][]string
	groupPolicies   map[string][]string
	roles           map[string]RoleInfo
	sessions        map[string]SessionRecord
	admins          map[string]struct{}
}

// buildSnapshot resolves a batch of store records into a snapshot. Any
// undecodable record fails the whole build: a partial snapshot must never
// be published, so the previous one stays current and the error is
// surfaced to the refresh scheduler.
func buildSnapshot(records []store.Record, generation uint64, rootKey, rootSecret string) (*Snapshot, error) {
	snap := &Snapshot{
		Generation:      generation,
		BuiltAt:         time.Now().UTC(),
		policies:        make(map[string]policy.Policy),
		users:           make(map[string]auth.Credentials),
		serviceAccounts: make(map[string]ServiceAccountInfo),
		groups:          make(map[string]GroupInfo),
		memberships:     make(map[string][]string),
		userPolicies:    make(map[string][]string),
		groupPolicies:   make(map[string][]string),
		roles:           make(map[string]RoleInfo),
		sessions:        make(map[string]SessionRecord),
		admins:          make(map[string]struct{}),
	}

	now := time.Now().UTC()

	for _, rec := range records {
		if err := snap.applyRecord(rec, now); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotBuildFailed, err.Error())
		}
	}

	// Built-in policies fill in only where no stored policy took the name.
	for name, p := range policy.CannedPolicies() {
		if _, ok := snap.policies[name]; !ok {
			snap.policies[name] = p
		}
	}

	// The configured root credential is flagged administrative; it is the
	// only principal that bypasses statement evaluation.
	if rootKey != "" {
		snap.users[rootKey] = auth.Credentials{
			AccessKey: rootKey,
			SecretKey: rootSecret,
			Status:    auth.StatusEnabled,
		}
		snap.admins[rootKey] = struct{}{}
	}

	// Derived index: user -> groups, from group membership lists.
	for name, gi := range snap.groups {
		for _, member := range gi.Members {
			snap.memberships[member] = append(snap.memberships[member], name)
		}
	}

	return snap, nil
}

// applyRecord decodes one store record into the snapshot under build.
func (s *Snapshot) applyRecord(rec store.Record, now time.Time) error {
	switch rec.Kind {
	case store.KindUser:
		var ui UserIdentity
		if err := json.Unmarshal(rec.Data, &ui); err != nil {
			return fmt.Errorf("user %q: %w", rec.Name, err)
		}
		s.users[rec.Name] = ui.Credentials

	case store.KindServiceAccount:
		var sa ServiceAccountInfo
		if err := json.Unmarshal(rec.Data, &sa); err != nil {
			return fmt.Errorf("service account %q: %w", rec.Name, err)
		}
		s.serviceAccounts[rec.Name] = sa
		s.users[rec.Name] = sa.Credentials

	case store.KindGroup:
		var gi GroupInfo
		if err := json.Unmarshal(rec.Data, &gi); err != nil {
			return fmt.Errorf("group %q: %w", rec.Name, err)
		}
		s.groups[rec.Name] = gi

	case store.KindRole:
		var ri RoleInfo
		if err := json.Unmarshal(rec.Data, &ri); err != nil {
			return fmt.Errorf("role %q: %w", rec.Name, err)
		}
		s.roles[rec.Name] = ri

	case store.KindPolicy:
		p, err := policy.ParsePolicy(rec.Data)
		if err != nil {
			return fmt.Errorf("policy %q: %w", rec.Name, err)
		}
		s.policies[rec.Name] = p

	case store.KindUserPolicy:
		var mp MappedPolicy
		if err := json.Unmarshal(rec.Data, &mp); err != nil {
			return fmt.Errorf("user policy mapping %q: %w", rec.Name, err)
		}
		s.userPolicies[rec.Name] = mp.Policies

	case store.KindGroupPolicy:
		var mp MappedPolicy
		if err := json.Unmarshal(rec.Data, &mp); err != nil {
			return fmt.Errorf("group policy mapping %q: %w", rec.Name, err)
		}
		s.groupPolicies[rec.Name] = mp.Policies

	case store.KindSession:
		var sr SessionRecord
		if err := json.Unmarshal(rec.Data, &sr); err != nil {
			return fmt.Errorf("session %q: %w", rec.Name, err)
		}
		// Naturally expired stubs carry no information a verification
		// would not already yield.
		if sr.ExpiresAt.After(now) {
			s.sessions[sr.SessionID] = sr
		}

	default:
		// Unknown kinds are tolerated for forward compatibility with
		// newer record types written by a newer server.
		logging.Debug().
			Str("kind", string(rec.Kind)).
			Str("name", rec.Name).
			Msg("Skipping unknown IAM record kind")
	}
	return nil
}

// LookupUser returns the credentials for an access key, covering both
// regular users and service accounts.
func (s *Snapshot) LookupUser(accessKey string) (auth.Credentials, bool) {
	creds, ok := s.users[accessKey]
	return creds, ok
}

// ServiceAccount returns the service-account info for an access key.
func (s *Snapshot) ServiceAccount(accessKey string) (ServiceAccountInfo, bool) {
	sa, ok := s.serviceAccounts[accessKey]
	return sa, ok
}

// IsAdmin reports whether the access key carries the administrative flag.
func (s *Snapshot) IsAdmin(accessKey string) bool {
	_, ok := s.admins[accessKey]
	return ok
}

// Policy returns the named policy document.
func (s *Snapshot) Policy(name string) (policy.Policy, bool) {
	p, ok := s.policies[name]
	return p, ok
}

// Role returns the named role.
func (s *Snapshot) Role(name string) (RoleInfo, bool) {
	r, ok := s.roles[name]
	return r, ok
}

// Group returns the named group.
func (s *Snapshot) Group(name string) (GroupInfo, bool) {
	g, ok := s.groups[name]
	return g, ok
}

// SessionRevoked reports whether the session id has been administratively
// revoked. Sessions without a stub (issued before the last compaction, or
// on a peer that has not replicated yet) are treated as not revoked; the
// token's own expiry still bounds them.
func (s *Snapshot) SessionRevoked(sessionID string) bool {
	sr, ok := s.sessions[sessionID]
	return ok && sr.Revoked()
}

// LiveSessions returns the live session stubs issued for the parent.
func (s *Snapshot) LiveSessions(parent string) []SessionRecord {
	now := time.Now().UTC()
	var out []SessionRecord
	for _, sr := range s.sessions {
		if sr.Parent == parent && sr.Live(now) {
			out = append(out, sr)
		}
	}
	return out
}

// EffectivePolicyNames resolves the policy names applicable to a
// principal: direct attachments first, then policies inherited through
// enabled group memberships, deduplicated in that order.
func (s *Snapshot) EffectivePolicyNames(principal string) []string {
	seen := make(map[string]struct{})
	var names []string

	add := func(list []string) {
		for _, n := range list {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}

	add(s.userPolicies[principal])
	for _, group := range s.memberships[principal] {
		if gi, ok := s.groups[group]; ok && gi.Status == auth.StatusEnabled {
			add(s.groupPolicies[group])
		}
	}
	return names
}

// effectiveStatements merges the statements of every named policy that
// exists in the snapshot. Missing names are skipped; a mapping to a
// deleted policy grants nothing.
func (s *Snapshot) effectiveStatements(names []string) []policy.Statement {
	var statements []policy.Statement
	for _, name := range names {
		if p, ok := s.policies[name]; ok {
			statements = append(statements, p.Statements...)
		}
	}
	return statements
}

// EffectiveStatements returns the merged statement list for a principal,
// combining direct and group-inherited policies.
func (s *Snapshot) EffectiveStatements(principal string) []policy.Statement {
	return s.effectiveStatements(s.EffectivePolicyNames(principal))
}

// UserCount, GroupCount, PolicyCount and RoleCount size the snapshot for
// metrics.
func (s *Snapshot) UserCount() int   { return len(s.users) }
func (s *Snapshot) GroupCount() int  { return len(s.groups) }
func (s *Snapshot) PolicyCount() int { return len(s.policies) }
func (s *Snapshot) RoleCount() int   { return len(s.roles) }
