// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package policy

// Built-in policy names seeded into every snapshot unless an administrator
// has stored a policy under the same name.
const (
	ReadOnlyPolicyName    = "readonly"
	ReadWritePolicyName   = "readwrite"
	WriteOnlyPolicyName   = "writeonly"
	DiagnosticsPolicyName = "diagnostics"
)

// ReadOnly grants read access to every bucket and object.
var ReadOnly = Policy{
	ID:      ReadOnlyPolicyName,
	Version: DefaultVersion,
	Statements: []Statement{
		NewStatement(Allow,
			NewActionSet(GetObjectAction, GetBucketLocation, ListBucketAction, ListAllMyBuckets),
			NewResourceSet(Resource{Pattern: "*"}),
		),
	},
}

// ReadWrite grants full access to every bucket and object.
var ReadWrite = Policy{
	ID:      ReadWritePolicyName,
	Version: DefaultVersion,
	Statements: []Statement{
		NewStatement(Allow,
			NewActionSet(AllActions),
			NewResourceSet(Resource{Pattern: "*"}),
		),
	},
}

// WriteOnly grants write access without read access.
var WriteOnly = Policy{
	ID:      WriteOnlyPolicyName,
	Version: DefaultVersion,
	Statements: []Statement{
		NewStatement(Allow,
			NewActionSet(PutObjectAction, DeleteObjectAction, AbortMultipartUpload),
			NewResourceSet(Resource{Pattern: "*"}),
		),
	},
}

// Diagnostics grants access to the server health and profiling surface
// without any data access.
var Diagnostics = Policy{
	ID:      DiagnosticsPolicyName,
	Version: DefaultVersion,
	Statements: []Statement{
		NewStatement(Allow,
			NewActionSet(ServerInfoAction, HealthInfoAction, ProfilingAction,
				ServerTraceAction, ConsoleLogAction, PrometheusAction),
			NewResourceSet(Resource{Pattern: "*"}),
		),
	},
}

// CannedPolicies maps the built-in policy names to their documents.
func CannedPolicies() map[string]Policy {
	return map[string]Policy{
		ReadOnlyPolicyName:    ReadOnly,
		ReadWritePolicyName:   ReadWrite,
		WriteOnlyPolicyName:   WriteOnly,
		DiagnosticsPolicyName: Diagnostics,
	}
}
