// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

/*
sys.go - IAM System: Identity Store and Authorization Engine

Sys holds the current Snapshot behind an atomically-replaceable pointer.
The read path loads the pointer once per operation and never blocks on
writers or on the backing-store refresh; writers build a complete new
snapshot and publish it in one atomic store. Old snapshots remain valid
for readers still holding them and are reclaimed by the garbage collector
once unreferenced.
*/

package iam

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/alimy/rustfs/internal/config"
	"github.com/alimy/rustfs/internal/iam/auth"
	"github.com/alimy/rustfs/internal/iam/policy"
	"github.com/alimy/rustfs/internal/iam/store"
	"github.com/alimy/rustfs/internal/logging"
)

// Refresh triggers, labeled on refresh metrics.
const (
	triggerPeriodic = "periodic"
	triggerMutation = "mutation"
	triggerStartup  = "startup"
	triggerManual   = "manual"
)

// Options configures a Sys.
type Options struct {
	// Store is the durable backing store (source of truth).
	Store store.API

	// Issuer signs and verifies session tokens.
	Issuer *auth.TokenIssuer

	// IAM, Token and Audit sections from the resolved configuration.
	IAM   config.IAMConfig
	Token config.TokenConfig
	Audit config.AuditConfig
}

// Sys is the IAM core: identity store, authorization engine and mutation
// path over one shared immutable snapshot.
type Sys struct {
	store  store.API
	issuer *auth.TokenIssuer
	cfg    config.IAMConfig
	token  config.TokenConfig

	// current is the only shared mutable reference in the read path.
	current atomic.Pointer[Snapshot]

	// refreshMu serializes snapshot builds so generations publish in
	// commit order. Readers never take it.
	refreshMu sync.Mutex

	// cache holds recent context-free decisions; purged on every publish.
	cache *expirable.LRU[string, Decision]

	auditor *AuditLogger

	// invalidateCh signals the refresher that a mutation committed.
	invalidateCh chan struct{}
}

// New creates the IAM system with an empty initial snapshot. Call
// Refresh (or start the Refresher) to load state from the backing store;
// until then only the configured root credential can authorize.
func New(opts Options) (*Sys, error) {
	if opts.Store == nil {
		return nil, errors.New("backing store is required")
	}
	if opts.Issuer == nil {
		return nil, errors.New("token issuer is required")
	}

	s := &Sys{
		store:        opts.Store,
		issuer:       opts.Issuer,
		cfg:          opts.IAM,
		token:        opts.Token,
		auditor:      NewAuditLogger(opts.Audit),
		invalidateCh: make(chan struct{}, 1),
	}

	if opts.IAM.DecisionCacheSize > 0 {
		ttl := opts.IAM.DecisionCacheTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		s.cache = expirable.NewLRU[string, Decision](opts.IAM.DecisionCacheSize, nil, ttl)
	}

	snap, err := buildSnapshot(nil, 0, opts.IAM.RootAccessKey, opts.IAM.RootSecretKey)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)

	return s, nil
}

// Close releases resources. The snapshot keeps serving until the last
// reference is dropped.
func (s *Sys) Close() {
	s.auditor.Close()
}

// Current returns the currently published snapshot. The returned value is
// immutable and remains consistent for as long as the caller holds it.
func (s *Sys) Current() *Snapshot {
	return s.current.Load()
}

// publish atomically installs a new snapshot and drops cached decisions
// derived from the previous one.
func (s *Sys) publish(snap *Snapshot) {
	s.current.Store(snap)
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Refresh performs a full reload from the backing store, resolves a new
// snapshot and publishes it. On any failure the previous snapshot remains
// current and the error is returned to the caller; nothing partial is
// ever visible.
func (s *Sys) Refresh(ctx context.Context) error {
	return s.refresh(ctx, triggerManual)
}

func (s *Sys) refresh(ctx context.Context, trigger string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		RecordRefresh(err, trigger, time.Since(start), nil)
		return fmt.Errorf("%w: %s", ErrBackingStoreUnavailable, err.Error())
	}

	generation := s.Current().Generation + 1
	snap, err := buildSnapshot(records, generation, s.cfg.RootAccessKey, s.cfg.RootSecretKey)
	if err != nil {
		RecordRefresh(err, trigger, time.Since(start), nil)
		return err
	}

	s.publish(snap)
	RecordRefresh(nil, trigger, time.Since(start), snap)

	logging.Debug().
		Uint64("generation", snap.Generation).
		Int("users", snap.UserCount()).
		Int("policies", snap.PolicyCount()).
		Str("trigger", trigger).
		Msg("IAM snapshot published")

	return nil
}

// invalidate wakes the refresher without blocking. Used alongside the
// mutation path's own synchronous refresh so peers of the refresher see
// the write promptly even if that synchronous refresh failed.
func (s *Sys) invalidate() {
	select {
	case s.invalidateCh <- struct{}{}:
	default:
	}
}

// refreshAfterWrite republishes after a successful write-through. A
// refresh failure here is logged, not returned: the write is already
// durable and the next scheduled refresh converges.
func (s *Sys) refreshAfterWrite(ctx context.Context, operation string) {
	if err := s.refresh(ctx, triggerMutation); err != nil {
		logging.Error().Err(err).
			Str("operation", operation).
			Msg("IAM post-mutation refresh failed; serving previous snapshot until next reload")
		s.invalidate()
	}
}

// Authorize answers whether the request's credential may perform the
// action on the resource. Credential failures and policy denials are
// expected outcomes and are returned as a deny decision with a reason
// code, never as an error.
func (s *Sys) Authorize(ctx context.Context, req AccessRequest) Decision {
	start := time.Now()
	snap := s.Current()

	// The decision cache only covers context-free long-term credential
	// checks: session tokens embed per-token state and condition values
	// change per request, so neither is safely cacheable.
	cacheable := s.cache != nil && req.SessionToken == "" && len(req.ConditionValues) == 0
	cacheKey := ""
	if cacheable {
		cacheKey = req.AccessKey + "\x00" + string(req.Action) + "\x00" + req.Resource
		if d, ok := s.cache.Get(cacheKey); ok {
			RecordDecision(d.Allowed, d.Reason, time.Since(start), true)
			s.audit(req, d, "", "", time.Since(start), true)
			return d
		}
	}

	d, principal, sessionID := s.evaluate(snap, req)

	if cacheable {
		s.cache.Add(cacheKey, d)
	}

	elapsed := time.Since(start)
	RecordDecision(d.Allowed, d.Reason, elapsed, false)
	s.audit(req, d, principal, sessionID, elapsed, false)
	return d
}

// audit emits one audit event for a decision.
func (s *Sys) audit(req AccessRequest, d Decision, principal, sessionID string, elapsed time.Duration, cacheHit bool) {
	s.auditor.LogDecision(&AuditEvent{
		AccessKey:   req.AccessKey,
		Principal:   principal,
		SessionID:   sessionID,
		Action:      string(req.Action),
		Resource:    req.Resource,
		Allowed:     d.Allowed,
		Reason:      d.Reason,
		MatchedSIDs: d.MatchedSIDs,
		Duration:    elapsed,
		CacheHit:    cacheHit,
	})
}

// evaluate computes the decision against one snapshot. It returns the
// resolved principal id and session id (when applicable) for audit.
func (s *Sys) evaluate(snap *Snapshot, req AccessRequest) (Decision, string, string) {
	if req.SessionToken != "" {
		return s.evaluateSession(snap, req)
	}
	d := s.evaluateLongTerm(snap, req)
	return d, req.AccessKey, ""
}

// evaluateLongTerm handles regular users and service accounts.
func (s *Sys) evaluateLongTerm(snap *Snapshot, req AccessRequest) Decision {
	creds, ok := snap.LookupUser(req.AccessKey)
	if !ok || !creds.IsValid() {
		return deny(ReasonUnknownOrDisabledPrincipal)
	}

	// The administrative flag is a distinct, rarely-granted attribute in
	// the snapshot, not a default.
	if snap.IsAdmin(req.AccessKey) {
		return allow(nil)
	}

	args := policy.Args{
		AccountName:     req.AccessKey,
		Action:          req.Action,
		Resource:        req.Resource,
		ConditionValues: req.ConditionValues,
	}

	if sa, ok := snap.ServiceAccount(req.AccessKey); ok {
		return s.evaluateServiceAccount(snap, sa, args)
	}

	decision, matched := policy.EvaluateStatementsWithMatches(snap.EffectiveStatements(req.AccessKey), args)
	return collapse(decision, matched, ReasonExplicitDeny)
}

// evaluateServiceAccount evaluates against the parent's effective policy,
// intersected with the embedded policy when the account carries one.
func (s *Sys) evaluateServiceAccount(snap *Snapshot, sa ServiceAccountInfo, args policy.Args) Decision {
	parent := sa.Credentials.ParentUser
	parentCreds, ok := snap.LookupUser(parent)
	if !ok || !parentCreds.IsValid() {
		return deny(ReasonUnknownOrDisabledPrincipal)
	}

	args.AccountName = parent
	base, matched := policy.EvaluateStatementsWithMatches(snap.EffectiveStatements(parent), args)

	if len(sa.Policy) == 0 {
		return collapse(base, matched, ReasonExplicitDeny)
	}

	embedded, err := policy.ParsePolicy(sa.Policy)
	if err != nil {
		// A corrupt embedded policy grants nothing.
		return deny(ReasonInvalidCredential)
	}
	combined := policy.Intersect(base, embedded.Evaluate(args))
	return collapse(combined, matched, ReasonSessionPolicyDeny)
}

// evaluateSession verifies the session token, checks revocation, and
// intersects the role policy with the optional session policy.
func (s *Sys) evaluateSession(snap *Snapshot, req AccessRequest) (Decision, string, string) {
	claims, err := s.issuer.Verify(req.SessionToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCredentialExpired):
			return deny(ReasonCredentialExpired), "", ""
		default:
			return deny(ReasonInvalidCredential), "", ""
		}
	}

	principal := claims.Parent
	sessionID := claims.SessionID()

	if snap.SessionRevoked(sessionID) {
		return deny(ReasonCredentialRevoked), principal, sessionID
	}

	parentCreds, ok := snap.LookupUser(principal)
	if !ok || !parentCreds.IsValid() {
		return deny(ReasonUnknownOrDisabledPrincipal), principal, sessionID
	}

	role, ok := snap.Role(claims.Role)
	if !ok {
		// The role was deleted after issuance; the session grants nothing.
		return deny(ReasonUnknownOrDisabledPrincipal), principal, sessionID
	}

	args := policy.Args{
		AccountName:     principal,
		Action:          req.Action,
		Resource:        req.Resource,
		ConditionValues: req.ConditionValues,
		Claims: map[string]interface{}{
			"parent": claims.Parent,
			"role":   claims.Role,
			"sid":    sessionID,
		},
	}

	roleDecision, matched := policy.EvaluateStatementsWithMatches(snap.effectiveStatements(role.PolicyNames), args)

	sessionPolicyJSON, err := claims.DecodeSessionPolicy()
	if err != nil {
		return deny(ReasonInvalidCredential), principal, sessionID
	}
	if sessionPolicyJSON == nil {
		return collapse(roleDecision, matched, ReasonExplicitDeny), principal, sessionID
	}

	sessionPolicy, err := policy.ParsePolicy(sessionPolicyJSON)
	if err != nil {
		return deny(ReasonInvalidCredential), principal, sessionID
	}

	combined := policy.Intersect(roleDecision, sessionPolicy.Evaluate(args))
	return collapse(combined, matched, ReasonSessionPolicyDeny), principal, sessionID
}

// collapse folds a tri-state evaluation into the engine's binary decision:
// NotApplicable is an implicit deny at this boundary.
func collapse(d policy.Decision, matched []string, denyReason string) Decision {
	switch d {
	case policy.DecisionAllow:
		return allow(matched)
	case policy.DecisionDeny:
		return deny(denyReason, matched...)
	default:
		return deny(ReasonNoMatchingStatement)
	}
}

// GetUser returns the credentials stored for an access key, with the
// secret key blanked for listing surfaces.
func (s *Sys) GetUser(accessKey string) (auth.Credentials, bool) {
	creds, ok := s.Current().LookupUser(accessKey)
	if !ok {
		return auth.Credentials{}, false
	}
	creds.SecretKey = ""
	creds.SessionToken = ""
	return creds, true
}

// ListUsers returns the sorted access keys of regular users (service
// accounts excluded) in the current snapshot.
func (s *Sys) ListUsers() []string {
	snap := s.Current()
	out := make([]string, 0, len(snap.users))
	for key := range snap.users {
		if _, isSA := snap.serviceAccounts[key]; isSA {
			continue
		}
		if key == s.cfg.RootAccessKey {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// ListGroups returns the sorted group names in the current snapshot.
func (s *Sys) ListGroups() []string {
	snap := s.Current()
	out := make([]string, 0, len(snap.groups))
	for name := range snap.groups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ListPolicies returns the sorted policy names in the current snapshot,
// including the built-in canned policies.
func (s *Sys) ListPolicies() []string {
	snap := s.Current()
	out := make([]string, 0, len(snap.policies))
	for name := range snap.policies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ListRoles returns the sorted role names in the current snapshot.
func (s *Sys) ListRoles() []string {
	snap := s.Current()
	out := make([]string, 0, len(snap.roles))
	for name := range snap.roles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PolicyNamesFor returns the effective policy names for a principal,
// formatted for administrative display ("direct" and "group:<name>"
// provenance is intentionally not exposed; callers get the merged view
// the engine evaluates).
func (s *Sys) PolicyNamesFor(principal string) string {
	return strings.Join(s.Current().EffectivePolicyNames(principal), ",")
}
