// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package policy implements the AWS-IAM-style policy document model: typed
// statements with effect, action patterns, resource patterns and condition
// blocks, plus the deny-overrides evaluation procedure.
//
// The package is pure data and evaluation logic with no I/O. All types are
// immutable values once constructed; evaluation is synchronous CPU work
// safe for use from any number of goroutines.
//
// # Evaluation
//
// Statements from every applicable policy are merged before evaluation:
//
//	merged := direct.Merge(groupPolicies...)
//	decision := merged.Evaluate(policy.Args{
//	    AccountName: "alice",
//	    Action:      policy.GetObjectAction,
//	    Resource:    "mybucket/readme.md",
//	})
//
// The decision rule is: explicit deny wins over any allow; no match is
// NotApplicable, which the authorization engine collapses to a deny.
//
// # Session policies
//
// A session policy narrows a role policy via Intersect: the combined
// decision allows only when both the role policy and the session policy
// allow.
package policy
