// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// ResourceARNPrefix is the ARN prefix for S3 resources.
const ResourceARNPrefix = "arn:aws:s3:::"

// Resource is a single resource pattern in "bucket/object" canonical form.
// A pattern may carry wildcards in either segment: "mybucket/*",
// "mybucket/log/2024-*", "*".
type Resource struct {
	// Pattern is the canonical "bucket" or "bucket/object" pattern with the
	// ARN prefix stripped.
	Pattern string
}

// NewResource builds a Resource from a bucket and optional object pattern.
func NewResource(bucket, object string) Resource {
	if object == "" {
		return Resource{Pattern: bucket}
	}
	return Resource{Pattern: bucket + "/" + object}
}

// ParseResource parses a resource pattern in ARN form
// ("arn:aws:s3:::bucket/key") or bare canonical form ("bucket/key").
// Both path-style and virtual-host-style request targets normalize to the
// same canonical form, so a single pattern matches either addressing mode.
func ParseResource(s string) (Resource, error) {
	s = strings.TrimPrefix(s, ResourceARNPrefix)
	if s == "" {
		return Resource{}, fmt.Errorf("empty resource")
	}
	if strings.HasPrefix(s, "/") {
		return Resource{}, fmt.Errorf("resource %q must not start with '/'", s)
	}
	return Resource{Pattern: s}, nil
}

// String returns the resource in ARN form.
func (r Resource) String() string {
	return ResourceARNPrefix + r.Pattern
}

// IsValid reports whether the pattern is non-empty and canonical.
func (r Resource) IsValid() bool {
	return r.Pattern != "" && !strings.HasPrefix(r.Pattern, "/")
}

// Match reports whether the pattern matches the canonical target resource.
// A bucket-only pattern matches only the bucket itself, not its objects;
// "bucket/*" is required to cover objects, as in AWS IAM.
func (r Resource) Match(resource string) bool {
	return wildcardMatch(r.Pattern, resource)
}

// bucket returns the bucket segment of the pattern.
func (r Resource) bucket() string {
	b, _, _ := strings.Cut(r.Pattern, "/")
	return b
}

// ResourceSet is a set of resource patterns attached to a statement.
type ResourceSet map[Resource]struct{}

// NewResourceSet builds a ResourceSet from the given resources.
func NewResourceSet(resources ...Resource) ResourceSet {
	s := make(ResourceSet, len(resources))
	for _, r := range resources {
		s[r] = struct{}{}
	}
	return s
}

// Match reports whether any pattern in the set matches the target resource.
func (s ResourceSet) Match(resource string) bool {
	for r := range s {
		if r.Match(resource) {
			return true
		}
	}
	return false
}

// Equals reports whether both sets contain exactly the same patterns.
func (s ResourceSet) Equals(other ResourceSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if _, ok := other[r]; !ok {
			return false
		}
	}
	return true
}

// Validate checks that every member is a well-formed resource pattern.
func (s ResourceSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("statement has no resources")
	}
	for r := range s {
		if !r.IsValid() {
			return fmt.Errorf("invalid resource %q", r.Pattern)
		}
	}
	return nil
}

// slice returns the members sorted for deterministic serialization.
func (s ResourceSet) slice() []Resource {
	out := make([]Resource, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

// MarshalJSON encodes the set as a JSON array of resource ARNs.
func (s ResourceSet) MarshalJSON() ([]byte, error) {
	arns := make([]string, 0, len(s))
	for _, r := range s.slice() {
		arns = append(arns, r.String())
	}
	return json.Marshal(arns)
}

// UnmarshalJSON accepts either a single resource ARN or an array of them.
func (s *ResourceSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		r, err := ParseResource(single)
		if err != nil {
			return err
		}
		*s = NewResourceSet(r)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("invalid resource list: %w", err)
	}
	if len(many) == 0 {
		return fmt.Errorf("empty resource list")
	}
	set := make(ResourceSet, len(many))
	for _, raw := range many {
		r, err := ParseResource(raw)
		if err != nil {
			return err
		}
		set[r] = struct{}{}
	}
	*s = set
	return nil
}
