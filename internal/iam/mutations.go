// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

/*
mutations.go - IAM Mutation Path

Every mutation follows the same sequence: validate the request, check
preconditions against the current snapshot, persist to the backing store,
then rebuild and publish a new snapshot. The durable write always happens
before any in-memory effect; if the store write fails the mutation fails
and the published snapshot is untouched. A failed post-write refresh is
logged and retried by the scheduled refresher, so a successful return
means durable, and visibility follows within one refresh interval at
worst (normally immediately).
*/

package iam

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/alimy/rustfs/internal/iam/auth"
	"github.com/alimy/rustfs/internal/iam/policy"
	"github.com/alimy/rustfs/internal/iam/store"
	"github.com/alimy/rustfs/internal/validation"
)

// Mutation operation labels for metrics.
const (
	opCreateUser           = "create_user"
	opDeleteUser           = "delete_user"
	opSetUserStatus        = "set_user_status"
	opSetPolicy            = "set_policy"
	opDeletePolicy         = "delete_policy"
	opAttachPolicy         = "attach_policy"
	opDetachPolicy         = "detach_policy"
	opCreateGroup          = "create_group"
	opDeleteGroup          = "delete_group"
	opAddUserToGroup       = "add_user_to_group"
	opRemoveUserFromGroup  = "remove_user_from_group"
	opSetGroupStatus       = "set_group_status"
	opCreateRole           = "create_role"
	opDeleteRole           = "delete_role"
	opAssumeRole           = "assume_role"
	opRevokeSession        = "revoke_session"
	opCreateServiceAccount = "create_service_account"
	opDeleteServiceAccount = "delete_service_account"
)

// CreateUserRequest creates a long-term credential.
type CreateUserRequest struct {
	AccessKey string `json:"access_key" validate:"required,accesskey"`
	SecretKey string `json:"secret_key" validate:"required,min=8,max=256"`
	Status    string `json:"status" validate:"omitempty,oneof=enabled disabled"`
}

// CreateUser persists a new user identity. Creating an access key that
// already exists is an error, not an upsert.
func (s *Sys) CreateUser(ctx context.Context, req CreateUserRequest) (err error) {
	defer func() { RecordMutation(opCreateUser, err) }()

	if err = validation.ValidateStruct(req); err != nil {
		return err
	}
	if _, exists := s.Current().LookupUser(req.AccessKey); exists {
		return fmt.Errorf("%w: %s", ErrUserExists, req.AccessKey)
	}

	status := req.Status
	if status == "" {
		status = auth.StatusEnabled
	}
	identity := newUserIdentity(auth.Credentials{
		AccessKey: req.AccessKey,
		SecretKey: req.SecretKey,
		Status:    status,
	})

	if err = s.save(ctx, store.KindUser, req.AccessKey, identity); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opCreateUser)
	return nil
}

// DeleteUser removes a user along with its policy mapping and service
// accounts, and scrubs it from group membership lists. Live sessions
// rooted at the user are revoked when cascading deletes are configured;
// otherwise the delete is rejected while any session is live.
func (s *Sys) DeleteUser(ctx context.Context, accessKey string) (err error) {
	defer func() { RecordMutation(opDeleteUser, err) }()

	snap := s.Current()
	if _, ok := snap.LookupUser(accessKey); !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, accessKey)
	}

	live := snap.LiveSessions(accessKey)
	if len(live) > 0 && !s.cfg.DeleteCascadesSessions {
		return fmt.Errorf("%w: user %q has %d live sessions", ErrReferentialIntegrity, accessKey, len(live))
	}

	now := time.Now().UTC()
	for _, sess := range live {
		sess.RevokedAt = now
		if err = s.save(ctx, store.KindSession, sess.SessionID, sess); err != nil {
			return err
		}
	}

	for name, sa := range snap.serviceAccounts {
		if sa.Credentials.ParentUser != accessKey {
			continue
		}
		if err = s.store.Delete(ctx, store.KindServiceAccount, name); err != nil {
			return err
		}
	}

	for name, group := range snap.groups {
		if !containsString(group.Members, accessKey) {
			continue
		}
		group.Members = removeString(group.Members, accessKey)
		if err = s.save(ctx, store.KindGroup, name, group); err != nil {
			return err
		}
	}

	if err = s.deleteIgnoreMissing(ctx, store.KindUserPolicy, accessKey); err != nil {
		return err
	}
	if err = s.store.Delete(ctx, store.KindUser, accessKey); err != nil {
		return err
	}

	s.refreshAfterWrite(ctx, opDeleteUser)
	return nil
}

// SetUserStatus enables or disables a user. Disabling takes effect for
// all of the user's credentials, including session tokens and service
// accounts, as soon as the new snapshot publishes.
func (s *Sys) SetUserStatus(ctx context.Context, accessKey, status string) (err error) {
	defer func() { RecordMutation(opSetUserStatus, err) }()

	if status != auth.StatusEnabled && status != auth.StatusDisabled {
		return fmt.Errorf("invalid status %q", status)
	}
	creds, ok := s.Current().LookupUser(accessKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, accessKey)
	}

	creds.Status = status
	identity := newUserIdentity(creds)
	if err = s.save(ctx, store.KindUser, accessKey, identity); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opSetUserStatus)
	return nil
}

// SetPolicy creates or replaces a named policy document. The document is
// validated before the write; replacing bumps the stored version.
func (s *Sys) SetPolicy(ctx context.Context, name string, doc []byte) (err error) {
	defer func() { RecordMutation(opSetPolicy, err) }()

	if err = validation.ValidateVar(name, "required,policyname"); err != nil {
		return err
	}
	p, err := policy.ParsePolicy(doc)
	if err != nil {
		return err
	}
	if err = p.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	rec := store.Record{
		Kind:      store.KindPolicy,
		Name:      name,
		Version:   recordFormatVersion,
		UpdatedAt: time.Now().UTC(),
		Data:      raw,
	}
	if err = s.store.Save(ctx, rec); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opSetPolicy)
	return nil
}

// DeletePolicy removes a named policy. The delete is rejected while any
// user mapping, group mapping or role still references the policy, so a
// dangling name can never silently grant nothing.
func (s *Sys) DeletePolicy(ctx context.Context, name string) (err error) {
	defer func() { RecordMutation(opDeletePolicy, err) }()

	snap := s.Current()
	if _, ok := snap.Policy(name); !ok {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, name)
	}

	for principal, names := range snap.userPolicies {
		if containsString(names, name) {
			return fmt.Errorf("%w: policy %q is attached to user %q", ErrReferentialIntegrity, name, principal)
		}
	}
	for group, names := range snap.groupPolicies {
		if containsString(names, name) {
			return fmt.Errorf("%w: policy %q is attached to group %q", ErrReferentialIntegrity, name, group)
		}
	}
	for roleName, role := range snap.roles {
		if containsString(role.PolicyNames, name) {
			return fmt.Errorf("%w: policy %q is referenced by role %q", ErrReferentialIntegrity, name, roleName)
		}
	}

	if err = s.store.Delete(ctx, store.KindPolicy, name); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opDeletePolicy)
	return nil
}

// AttachUserPolicy adds a policy name to a user's mapping. Attaching an
// already-attached policy is a no-op that still succeeds.
func (s *Sys) AttachUserPolicy(ctx context.Context, accessKey, policyName string) (err error) {
	defer func() { RecordMutation(opAttachPolicy, err) }()
	return s.attach(ctx, store.KindUserPolicy, accessKey, policyName, func(snap *Snapshot) error {
		if _, ok := snap.LookupUser(accessKey); !ok {
			return fmt.Errorf("%w: %s", ErrUserNotFound, accessKey)
		}
		return nil
	})
}

// DetachUserPolicy removes a policy name from a user's mapping.
// Detaching a policy that is not attached is a no-op.
func (s *Sys) DetachUserPolicy(ctx context.Context, accessKey, policyName string) (err error) {
	defer func() { RecordMutation(opDetachPolicy, err) }()
	return s.detach(ctx, store.KindUserPolicy, accessKey, policyName)
}

// AttachGroupPolicy adds a policy name to a group's mapping.
func (s *Sys) AttachGroupPolicy(ctx context.Context, group, policyName string) (err error) {
	defer func() { RecordMutation(opAttachPolicy, err) }()
	return s.attach(ctx, store.KindGroupPolicy, group, policyName, func(snap *Snapshot) error {
		if _, ok := snap.Group(group); !ok {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
		}
		return nil
	})
}

// DetachGroupPolicy removes a policy name from a group's mapping.
func (s *Sys) DetachGroupPolicy(ctx context.Context, group, policyName string) (err error) {
	defer func() { RecordMutation(opDetachPolicy, err) }()
	return s.detach(ctx, store.KindGroupPolicy, group, policyName)
}

func (s *Sys) attach(ctx context.Context, kind store.Kind, principal, policyName string, checkPrincipal func(*Snapshot) error) error {
	snap := s.Current()
	if err := checkPrincipal(snap); err != nil {
		return err
	}
	if _, ok := snap.Policy(policyName); !ok {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, policyName)
	}

	mp := s.mappedPolicy(snap, kind, principal)
	if mp.contains(policyName) {
		return nil
	}
	mp.Policies = append(mp.Policies, policyName)

	if err := s.save(ctx, kind, principal, mp); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opAttachPolicy)
	return nil
}

func (s *Sys) detach(ctx context.Context, kind store.Kind, principal, policyName string) error {
	snap := s.Current()
	mp := s.mappedPolicy(snap, kind, principal)
	if !mp.contains(policyName) {
		return nil
	}
	mp.Policies = removeString(mp.Policies, policyName)

	var err error
	if len(mp.Policies) == 0 {
		err = s.deleteIgnoreMissing(ctx, kind, principal)
	} else {
		err = s.save(ctx, kind, principal, mp)
	}
	if err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opDetachPolicy)
	return nil
}

func (s *Sys) mappedPolicy(snap *Snapshot, kind store.Kind, principal string) MappedPolicy {
	var names []string
	switch kind {
	case store.KindUserPolicy:
		names = snap.userPolicies[principal]
	case store.KindGroupPolicy:
		names = snap.groupPolicies[principal]
	}
	return MappedPolicy{
		Version:  recordFormatVersion,
		Policies: append([]string(nil), names...),
	}
}

// CreateGroup creates an empty enabled group.
func (s *Sys) CreateGroup(ctx context.Context, name string) (err error) {
	defer func() { RecordMutation(opCreateGroup, err) }()

	if err = validation.ValidateVar(name, "required,policyname"); err != nil {
		return err
	}
	if _, exists := s.Current().Group(name); exists {
		return fmt.Errorf("group %q already exists", name)
	}

	group := newGroupInfo(nil)
	if err = s.save(ctx, store.KindGroup, name, group); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opCreateGroup)
	return nil
}

// AddUserToGroup adds a member. Both the user and the group must exist;
// adding an existing member is a no-op.
func (s *Sys) AddUserToGroup(ctx context.Context, group, accessKey string) (err error) {
	defer func() { RecordMutation(opAddUserToGroup, err) }()

	snap := s.Current()
	g, ok := snap.Group(group)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}
	if _, ok := snap.LookupUser(accessKey); !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, accessKey)
	}
	if containsString(g.Members, accessKey) {
		return nil
	}

	g.Members = append(append([]string(nil), g.Members...), accessKey)
	if err = s.save(ctx, store.KindGroup, group, g); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opAddUserToGroup)
	return nil
}

// RemoveUserFromGroup removes a member; removing a non-member is a no-op.
func (s *Sys) RemoveUserFromGroup(ctx context.Context, group, accessKey string) (err error) {
	defer func() { RecordMutation(opRemoveUserFromGroup, err) }()

	snap := s.Current()
	g, ok := snap.Group(group)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}
	if !containsString(g.Members, accessKey) {
		return nil
	}

	g.Members = removeString(g.Members, accessKey)
	if err = s.save(ctx, store.KindGroup, group, g); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opRemoveUserFromGroup)
	return nil
}

// SetGroupStatus enables or disables a group. A disabled group's policies
// stop contributing to members' effective policies; membership itself is
// preserved.
func (s *Sys) SetGroupStatus(ctx context.Context, group, status string) (err error) {
	defer func() { RecordMutation(opSetGroupStatus, err) }()

	if status != auth.StatusEnabled && status != auth.StatusDisabled {
		return fmt.Errorf("invalid status %q", status)
	}
	g, ok := s.Current().Group(group)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}

	g.Status = status
	if err = s.save(ctx, store.KindGroup, group, g); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opSetGroupStatus)
	return nil
}

// DeleteGroup removes a group. Only empty groups with no policy mapping
// can be deleted.
func (s *Sys) DeleteGroup(ctx context.Context, group string) (err error) {
	defer func() { RecordMutation(opDeleteGroup, err) }()

	snap := s.Current()
	g, ok := snap.Group(group)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}
	if len(g.Members) > 0 {
		return fmt.Errorf("%w: group %q has %d members", ErrReferentialIntegrity, group, len(g.Members))
	}
	if names := snap.groupPolicies[group]; len(names) > 0 {
		return fmt.Errorf("%w: group %q has attached policies", ErrReferentialIntegrity, group)
	}

	if err = s.deleteIgnoreMissing(ctx, store.KindGroupPolicy, group); err != nil {
		return err
	}
	if err = s.store.Delete(ctx, store.KindGroup, group); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opDeleteGroup)
	return nil
}

// CreateRoleRequest creates an assumable role.
type CreateRoleRequest struct {
	Name               string        `json:"name" validate:"required,policyname"`
	PolicyNames        []string      `json:"policy_names" validate:"required,min=1,dive,policyname"`
	MaxSessionDuration time.Duration `json:"max_session_duration"`
	TrustedPrincipals  []string      `json:"trusted_principals"`
}

// CreateRole persists a new role. Every referenced policy must already
// exist. An empty trusted-principal list means no one may assume the
// role; "*" trusts every enabled user.
func (s *Sys) CreateRole(ctx context.Context, req CreateRoleRequest) (err error) {
	defer func() { RecordMutation(opCreateRole, err) }()

	if err = validation.ValidateStruct(req); err != nil {
		return err
	}
	snap := s.Current()
	if _, exists := snap.Role(req.Name); exists {
		return fmt.Errorf("role %q already exists", req.Name)
	}
	for _, name := range req.PolicyNames {
		if _, ok := snap.Policy(name); !ok {
			return fmt.Errorf("%w: %s", ErrPolicyNotFound, name)
		}
	}

	maxDur := req.MaxSessionDuration
	if maxDur <= 0 {
		maxDur = s.token.MaxSessionDuration
	}
	role := RoleInfo{
		Version:            recordFormatVersion,
		Name:               req.Name,
		PolicyNames:        req.PolicyNames,
		MaxSessionDuration: maxDur,
		TrustedPrincipals:  req.TrustedPrincipals,
	}
	if err = s.save(ctx, store.KindRole, req.Name, role); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opCreateRole)
	return nil
}

// DeleteRole removes a role. Sessions already issued for it keep their
// tokens but stop authorizing once the snapshot no longer resolves the
// role.
func (s *Sys) DeleteRole(ctx context.Context, name string) (err error) {
	defer func() { RecordMutation(opDeleteRole, err) }()

	if _, ok := s.Current().Role(name); !ok {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	if err = s.store.Delete(ctx, store.KindRole, name); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opDeleteRole)
	return nil
}

// AssumeRoleRequest exchanges a long-term credential for a session token.
type AssumeRoleRequest struct {
	AccessKey     string        `json:"access_key" validate:"required,accesskey"`
	RoleName      string        `json:"role_name" validate:"required,policyname"`
	Duration      time.Duration `json:"duration"`
	SessionPolicy []byte        `json:"session_policy,omitempty"`
}

// SessionCredentials is the result of a successful AssumeRole.
type SessionCredentials struct {
	SessionToken string    `json:"session_token"`
	SessionID    string    `json:"session_id"`
	Expiration   time.Time `json:"expiration"`
}

// AssumeRole issues a session token for a role after checking that the
// caller is enabled and trusted by the role. The requested duration is
// clamped to the role's maximum; a session policy, when supplied, is
// validated and embedded in the token.
func (s *Sys) AssumeRole(ctx context.Context, req AssumeRoleRequest) (creds SessionCredentials, err error) {
	defer func() { RecordMutation(opAssumeRole, err) }()

	if err = validation.ValidateStruct(req); err != nil {
		return SessionCredentials{}, err
	}

	snap := s.Current()
	callerCreds, ok := snap.LookupUser(req.AccessKey)
	if !ok || !callerCreds.IsValid() {
		return SessionCredentials{}, ErrUnknownOrDisabledPrincipal
	}
	role, ok := snap.Role(req.RoleName)
	if !ok {
		return SessionCredentials{}, fmt.Errorf("%w: %s", ErrRoleNotFound, req.RoleName)
	}
	if !role.Trusts(req.AccessKey) {
		return SessionCredentials{}, fmt.Errorf("%w: user %q is not trusted by role %q", ErrNotAssumable, req.AccessKey, req.RoleName)
	}

	if len(req.SessionPolicy) > 0 {
		sp, perr := policy.ParsePolicy(req.SessionPolicy)
		if perr != nil {
			return SessionCredentials{}, perr
		}
		if perr := sp.Validate(); perr != nil {
			return SessionCredentials{}, perr
		}
	}

	duration := req.Duration
	if duration <= 0 {
		duration = s.token.DefaultSessionDuration
	}
	if role.MaxSessionDuration > 0 && duration > role.MaxSessionDuration {
		duration = role.MaxSessionDuration
	}
	if s.token.MaxSessionDuration > 0 && duration > s.token.MaxSessionDuration {
		duration = s.token.MaxSessionDuration
	}

	token, sessionID, err := s.issuer.Issue(req.AccessKey, req.RoleName, req.SessionPolicy, duration)
	if err != nil {
		return SessionCredentials{}, err
	}

	now := time.Now().UTC()
	sess := SessionRecord{
		Version:   recordFormatVersion,
		SessionID: sessionID,
		Parent:    req.AccessKey,
		Role:      req.RoleName,
		IssuedAt:  now,
		ExpiresAt: now.Add(duration),
	}
	if err = s.save(ctx, store.KindSession, sessionID, sess); err != nil {
		return SessionCredentials{}, err
	}
	s.refreshAfterWrite(ctx, opAssumeRole)

	return SessionCredentials{
		SessionToken: token,
		SessionID:    sessionID,
		Expiration:   sess.ExpiresAt,
	}, nil
}

// RevokeSession marks a session revoked. The token keeps verifying
// cryptographically but the engine rejects it from the next snapshot on.
// Revoking an already-revoked session is a no-op.
func (s *Sys) RevokeSession(ctx context.Context, sessionID string) (err error) {
	defer func() { RecordMutation(opRevokeSession, err) }()

	snap := s.Current()
	sess, ok := snap.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if sess.Revoked() {
		return nil
	}

	sess.RevokedAt = time.Now().UTC()
	if err = s.save(ctx, store.KindSession, sessionID, sess); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opRevokeSession)
	return nil
}

// CreateServiceAccountRequest creates a derived credential under a parent
// user. An empty Policy inherits the parent's effective policy; a
// non-empty one can only narrow it.
type CreateServiceAccountRequest struct {
	ParentUser string `json:"parent_user" validate:"required,accesskey"`
	Policy     []byte `json:"policy,omitempty"`
}

// CreateServiceAccount generates a fresh credential pair bound to the
// parent. The returned secret is shown once and never retrievable again.
func (s *Sys) CreateServiceAccount(ctx context.Context, req CreateServiceAccountRequest) (creds auth.Credentials, err error) {
	defer func() { RecordMutation(opCreateServiceAccount, err) }()

	if err = validation.ValidateStruct(req); err != nil {
		return auth.Credentials{}, err
	}

	snap := s.Current()
	parentCreds, ok := snap.LookupUser(req.ParentUser)
	if !ok || !parentCreds.IsValid() {
		return auth.Credentials{}, ErrUnknownOrDisabledPrincipal
	}

	var embedded json.RawMessage
	if len(req.Policy) > 0 {
		p, perr := policy.ParsePolicy(req.Policy)
		if perr != nil {
			return auth.Credentials{}, perr
		}
		if perr := p.Validate(); perr != nil {
			return auth.Credentials{}, perr
		}
		embedded = json.RawMessage(req.Policy)
	}

	creds, err = auth.GenerateCredentials()
	if err != nil {
		return auth.Credentials{}, err
	}
	creds.ParentUser = req.ParentUser
	creds.ServiceAccount = true
	creds.Status = auth.StatusEnabled

	sa := ServiceAccountInfo{
		Version:     recordFormatVersion,
		Credentials: creds,
		Policy:      embedded,
	}
	if err = s.save(ctx, store.KindServiceAccount, creds.AccessKey, sa); err != nil {
		return auth.Credentials{}, err
	}
	s.refreshAfterWrite(ctx, opCreateServiceAccount)
	return creds, nil
}

// DeleteServiceAccount removes a service account credential.
func (s *Sys) DeleteServiceAccount(ctx context.Context, accessKey string) (err error) {
	defer func() { RecordMutation(opDeleteServiceAccount, err) }()

	if _, ok := s.Current().ServiceAccount(accessKey); !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, accessKey)
	}
	if err = s.store.Delete(ctx, store.KindServiceAccount, accessKey); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx, opDeleteServiceAccount)
	return nil
}

// save marshals a payload and writes it through to the backing store.
func (s *Sys) save(ctx context.Context, kind store.Kind, name string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.Record{
		Kind:      kind,
		Name:      name,
		Version:   recordFormatVersion,
		UpdatedAt: time.Now().UTC(),
		Data:      raw,
	})
}

// deleteIgnoreMissing deletes a record, treating absence as success.
func (s *Sys) deleteIgnoreMissing(ctx context.Context, kind store.Kind, name string) error {
	err := s.store.Delete(ctx, kind, name)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// removeString returns a fresh slice; callers often pass slices owned by
// the published snapshot, which must never be mutated in place.
func removeString(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
