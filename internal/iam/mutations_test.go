// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package iam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alimy/rustfs/internal/iam/policy"
)

func TestCreateUser(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()

	require.NoError(t, sys.CreateUser(ctx, CreateUserRequest{AccessKey: "alice", SecretKey: "supersecret"}))

	t.Run("duplicate access key is rejected", func(t *testing.T) {
		err := sys.CreateUser(ctx, CreateUserRequest{AccessKey: "alice", SecretKey: "othersecret"})
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("short secret is rejected before any write", func(t *testing.T) {
		err := sys.CreateUser(ctx, CreateUserRequest{AccessKey: "shorty", SecretKey: "tiny"})
		require.Error(t, err)
		_, ok := sys.Current().LookupUser("shorty")
		require.False(t, ok)
	})

	t.Run("malformed access key is rejected", func(t *testing.T) {
		err := sys.CreateUser(ctx, CreateUserRequest{AccessKey: "bad key!", SecretKey: "supersecret"})
		require.Error(t, err)
	})
}

func TestDeleteUserCascade(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, sys *Sys) SessionCredentials {
		t.Helper()
		seedUser(t, sys, "alice")
		require.NoError(t, sys.CreateRole(ctx, CreateRoleRequest{
			Name: "reader", PolicyNames: []string{"data-read"}, TrustedPrincipals: []string{"alice"},
		}))
		creds, err := sys.AssumeRole(ctx, AssumeRoleRequest{AccessKey: "alice", RoleName: "reader"})
		require.NoError(t, err)
		return creds
	}

	t.Run("cascade revokes live sessions and removes dependents", func(t *testing.T) {
		sys := newTestSys(t)
		creds := setup(t, sys)

		sa, err := sys.CreateServiceAccount(ctx, CreateServiceAccountRequest{ParentUser: "alice"})
		require.NoError(t, err)
		require.NoError(t, sys.CreateGroup(ctx, "eng"))
		require.NoError(t, sys.AddUserToGroup(ctx, "eng", "alice"))

		require.NoError(t, sys.DeleteUser(ctx, "alice"))

		snap := sys.Current()
		_, ok := snap.LookupUser("alice")
		require.False(t, ok)
		_, ok = snap.ServiceAccount(sa.AccessKey)
		require.False(t, ok, "child service accounts go with the parent")
		require.True(t, snap.SessionRevoked(creds.SessionID))

		g, ok := snap.Group("eng")
		require.True(t, ok)
		require.NotContains(t, g.Members, "alice", "membership is scrubbed")
	})

	t.Run("reject mode refuses while sessions are live", func(t *testing.T) {
		sys := newTestSysWith(t, func(o *Options) {
			o.IAM.DeleteCascadesSessions = false
		})
		creds := setup(t, sys)

		err := sys.DeleteUser(ctx, "alice")
		require.ErrorIs(t, err, ErrReferentialIntegrity)
		_, ok := sys.Current().LookupUser("alice")
		require.True(t, ok, "rejected delete leaves the user intact")

		// Once the sessions are revoked the delete goes through.
		require.NoError(t, sys.RevokeSession(ctx, creds.SessionID))
		require.NoError(t, sys.DeleteUser(ctx, "alice"))
	})

	t.Run("unknown user", func(t *testing.T) {
		sys := newTestSys(t)
		require.ErrorIs(t, sys.DeleteUser(ctx, "ghost"), ErrUserNotFound)
	})
}

func TestPolicyAttachment(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()

	require.NoError(t, sys.CreateUser(ctx, CreateUserRequest{AccessKey: "alice", SecretKey: "supersecret"}))
	require.NoError(t, sys.SetPolicy(ctx, "data-read", []byte(dataReadPolicy)))

	t.Run("attach requires the policy to exist", func(t *testing.T) {
		err := sys.AttachUserPolicy(ctx, "alice", "no-such-policy")
		require.ErrorIs(t, err, ErrPolicyNotFound)
	})

	t.Run("attach requires the user to exist", func(t *testing.T) {
		err := sys.AttachUserPolicy(ctx, "ghost", "data-read")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("attach is idempotent", func(t *testing.T) {
		require.NoError(t, sys.AttachUserPolicy(ctx, "alice", "data-read"))
		require.NoError(t, sys.AttachUserPolicy(ctx, "alice", "data-read"))
		require.Equal(t, []string{"data-read"}, sys.Current().EffectivePolicyNames("alice"))
	})

	t.Run("detach of an unattached policy is a no-op", func(t *testing.T) {
		require.NoError(t, sys.DetachUserPolicy(ctx, "alice", "readonly"))
		require.Equal(t, []string{"data-read"}, sys.Current().EffectivePolicyNames("alice"))
	})

	t.Run("detach removes the mapping", func(t *testing.T) {
		require.NoError(t, sys.DetachUserPolicy(ctx, "alice", "data-read"))
		require.Empty(t, sys.Current().EffectivePolicyNames("alice"))
	})
}

func TestDeletePolicyReferentialIntegrity(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()

	require.NoError(t, sys.CreateUser(ctx, CreateUserRequest{AccessKey: "alice", SecretKey: "supersecret"}))
	require.NoError(t, sys.SetPolicy(ctx, "data-read", []byte(dataReadPolicy)))

	t.Run("attached to a user", func(t *testing.T) {
		require.NoError(t, sys.AttachUserPolicy(ctx, "alice", "data-read"))
		require.ErrorIs(t, sys.DeletePolicy(ctx, "data-read"), ErrReferentialIntegrity)
		require.NoError(t, sys.DetachUserPolicy(ctx, "alice", "data-read"))
	})

	t.Run("attached to a group", func(t *testing.T) {
		require.NoError(t, sys.CreateGroup(ctx, "eng"))
		require.NoError(t, sys.AttachGroupPolicy(ctx, "eng", "data-read"))
		require.ErrorIs(t, sys.DeletePolicy(ctx, "data-read"), ErrReferentialIntegrity)
		require.NoError(t, sys.DetachGroupPolicy(ctx, "eng", "data-read"))
	})

	t.Run("referenced by a role", func(t *testing.T) {
		require.NoError(t, sys.CreateRole(ctx, CreateRoleRequest{
			Name: "reader", PolicyNames: []string{"data-read"}, TrustedPrincipals: []string{"alice"},
		}))
		require.ErrorIs(t, sys.DeletePolicy(ctx, "data-read"), ErrReferentialIntegrity)
		require.NoError(t, sys.DeleteRole(ctx, "reader"))
	})

	t.Run("unreferenced policy deletes", func(t *testing.T) {
		require.NoError(t, sys.DeletePolicy(ctx, "data-read"))
		_, ok := sys.Current().Policy("data-read")
		require.False(t, ok)
	})

	t.Run("unknown policy", func(t *testing.T) {
		require.ErrorIs(t, sys.DeletePolicy(ctx, "ghost"), ErrPolicyNotFound)
	})
}

func TestSetPolicyValidation(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()

	t.Run("rejects malformed document", func(t *testing.T) {
		require.Error(t, sys.SetPolicy(ctx, "broken", []byte("{not json")))
	})

	t.Run("rejects unsupported version", func(t *testing.T) {
		require.Error(t, sys.SetPolicy(ctx, "old", []byte(`{"Version":"2008-10-17","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`)))
	})

	t.Run("replacing updates the document", func(t *testing.T) {
		require.NoError(t, sys.SetPolicy(ctx, "p", []byte(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`)))
		require.NoError(t, sys.SetPolicy(ctx, "p", []byte(`{"Version":"2012-10-17","Statement":[{"Effect":"Deny","Action":"s3:GetObject","Resource":"*"}]}`)))

		p, ok := sys.Current().Policy("p")
		require.True(t, ok)
		require.Equal(t, policy.Deny, p.Statements[0].Effect)
	})
}

func TestGroupLifecycle(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()

	require.NoError(t, sys.CreateUser(ctx, CreateUserRequest{AccessKey: "alice", SecretKey: "supersecret"}))
	require.NoError(t, sys.CreateGroup(ctx, "eng"))

	t.Run("duplicate group rejected", func(t *testing.T) {
		require.Error(t, sys.CreateGroup(ctx, "eng"))
	})

	t.Run("membership is idempotent both ways", func(t *testing.T) {
		require.NoError(t, sys.AddUserToGroup(ctx, "eng", "alice"))
		require.NoError(t, sys.AddUserToGroup(ctx, "eng", "alice"))
		g, _ := sys.Current().Group("eng")
		require.Equal(t, []string{"alice"}, g.Members)

		require.NoError(t, sys.RemoveUserFromGroup(ctx, "eng", "alice"))
		require.NoError(t, sys.RemoveUserFromGroup(ctx, "eng", "alice"))
		g, _ = sys.Current().Group("eng")
		require.Empty(t, g.Members)
	})

	t.Run("membership requires both sides to exist", func(t *testing.T) {
		require.ErrorIs(t, sys.AddUserToGroup(ctx, "ghost-group", "alice"), ErrGroupNotFound)
		require.ErrorIs(t, sys.AddUserToGroup(ctx, "eng", "ghost"), ErrUserNotFound)
	})

	t.Run("delete rejects non-empty group", func(t *testing.T) {
		require.NoError(t, sys.AddUserToGroup(ctx, "eng", "alice"))
		require.ErrorIs(t, sys.DeleteGroup(ctx, "eng"), ErrReferentialIntegrity)
		require.NoError(t, sys.RemoveUserFromGroup(ctx, "eng", "alice"))
	})

	t.Run("delete rejects group with attached policies", func(t *testing.T) {
		require.NoError(t, sys.SetPolicy(ctx, "data-read", []byte(dataReadPolicy)))
		require.NoError(t, sys.AttachGroupPolicy(ctx, "eng", "data-read"))
		require.ErrorIs(t, sys.DeleteGroup(ctx, "eng"), ErrReferentialIntegrity)
		require.NoError(t, sys.DetachGroupPolicy(ctx, "eng", "data-read"))
	})

	t.Run("empty detached group deletes", func(t *testing.T) {
		require.NoError(t, sys.DeleteGroup(ctx, "eng"))
		_, ok := sys.Current().Group("eng")
		require.False(t, ok)
	})
}

func TestCreateRole(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()

	t.Run("requires at least one policy", func(t *testing.T) {
		require.Error(t, sys.CreateRole(ctx, CreateRoleRequest{Name: "empty"}))
	})

	t.Run("every policy must exist", func(t *testing.T) {
		err := sys.CreateRole(ctx, CreateRoleRequest{Name: "reader", PolicyNames: []string{"ghost"}})
		require.ErrorIs(t, err, ErrPolicyNotFound)
	})

	t.Run("defaults max session duration", func(t *testing.T) {
		require.NoError(t, sys.CreateRole(ctx, CreateRoleRequest{Name: "reader", PolicyNames: []string{"readonly"}}))
		role, ok := sys.Current().Role("reader")
		require.True(t, ok)
		require.Equal(t, 12*time.Hour, role.MaxSessionDuration)
	})
}

func TestAssumeRole(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()
	seedUser(t, sys, "alice")
	require.NoError(t, sys.CreateUser(ctx, CreateUserRequest{AccessKey: "mallory", SecretKey: "supersecret"}))

	require.NoError(t, sys.CreateRole(ctx, CreateRoleRequest{
		Name:               "reader",
		PolicyNames:        []string{"data-read"},
		MaxSessionDuration: 30 * time.Minute,
		TrustedPrincipals:  []string{"alice"},
	}))

	t.Run("untrusted principal is rejected", func(t *testing.T) {
		_, err := sys.AssumeRole(ctx, AssumeRoleRequest{AccessKey: "mallory", RoleName: "reader"})
		require.ErrorIs(t, err, ErrNotAssumable)
	})

	t.Run("unknown caller is rejected", func(t *testing.T) {
		_, err := sys.AssumeRole(ctx, AssumeRoleRequest{AccessKey: "ghostuser", RoleName: "reader"})
		require.ErrorIs(t, err, ErrUnknownOrDisabledPrincipal)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := sys.AssumeRole(ctx, AssumeRoleRequest{AccessKey: "alice", RoleName: "ghostrole"})
		require.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("duration is clamped to the role maximum", func(t *testing.T) {
		creds, err := sys.AssumeRole(ctx, AssumeRoleRequest{
			AccessKey: "alice", RoleName: "reader", Duration: 5 * time.Hour,
		})
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(30*time.Minute), creds.Expiration, 10*time.Second)
	})

	t.Run("wildcard trust admits any enabled user", func(t *testing.T) {
		require.NoError(t, sys.CreateRole(ctx, CreateRoleRequest{
			Name: "open", PolicyNames: []string{"readonly"}, TrustedPrincipals: []string{"*"},
		}))
		_, err := sys.AssumeRole(ctx, AssumeRoleRequest{AccessKey: "mallory", RoleName: "open"})
		require.NoError(t, err)
	})

	t.Run("invalid session policy is rejected", func(t *testing.T) {
		_, err := sys.AssumeRole(ctx, AssumeRoleRequest{
			AccessKey: "alice", RoleName: "reader", SessionPolicy: []byte("{broken"),
		})
		require.Error(t, err)
	})
}

func TestRevokeSession(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()
	seedUser(t, sys, "alice")

	require.NoError(t, sys.CreateRole(ctx, CreateRoleRequest{
		Name: "reader", PolicyNames: []string{"data-read"}, TrustedPrincipals: []string{"alice"},
	}))
	creds, err := sys.AssumeRole(ctx, AssumeRoleRequest{AccessKey: "alice", RoleName: "reader"})
	require.NoError(t, err)

	require.NoError(t, sys.RevokeSession(ctx, creds.SessionID))
	require.True(t, sys.Current().SessionRevoked(creds.SessionID))

	t.Run("revoking twice is a no-op", func(t *testing.T) {
		require.NoError(t, sys.RevokeSession(ctx, creds.SessionID))
	})

	t.Run("unknown session", func(t *testing.T) {
		require.ErrorIs(t, sys.RevokeSession(ctx, "no-such-session"), ErrSessionNotFound)
	})
}

func TestServiceAccountLifecycle(t *testing.T) {
	sys := newTestSys(t)
	ctx := context.Background()
	seedUser(t, sys, "alice")

	t.Run("secret is returned once at creation", func(t *testing.T) {
		created, err := sys.CreateServiceAccount(ctx, CreateServiceAccountRequest{ParentUser: "alice"})
		require.NoError(t, err)
		require.NotEmpty(t, created.SecretKey)
		require.Equal(t, "alice", created.ParentUser)
		require.True(t, created.ServiceAccount)

		fetched, ok := sys.GetUser(created.AccessKey)
		require.True(t, ok)
		require.Empty(t, fetched.SecretKey, "secret must not be retrievable after creation")
	})

	t.Run("requires an enabled parent", func(t *testing.T) {
		_, err := sys.CreateServiceAccount(ctx, CreateServiceAccountRequest{ParentUser: "ghost"})
		require.ErrorIs(t, err, ErrUnknownOrDisabledPrincipal)
	})

	t.Run("rejects a corrupt embedded policy", func(t *testing.T) {
		_, err := sys.CreateServiceAccount(ctx, CreateServiceAccountRequest{
			ParentUser: "alice", Policy: []byte("nope"),
		})
		require.Error(t, err)
	})

	t.Run("delete removes the credential", func(t *testing.T) {
		created, err := sys.CreateServiceAccount(ctx, CreateServiceAccountRequest{ParentUser: "alice"})
		require.NoError(t, err)

		require.NoError(t, sys.DeleteServiceAccount(ctx, created.AccessKey))
		_, ok := sys.Current().ServiceAccount(created.AccessKey)
		require.False(t, ok)

		require.ErrorIs(t, sys.DeleteServiceAccount(ctx, created.AccessKey), ErrUserNotFound)
	})
}
