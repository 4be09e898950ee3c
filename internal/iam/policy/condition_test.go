// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package policy

import "testing"

func TestConditionsEvaluate(t *testing.T) {
	t.Run("StringEquals", func(t *testing.T) {
		c := Conditions{OpStringEquals: {"s3:prefix": {"photos/", "docs/"}}}
		if !c.Evaluate(map[string][]string{"s3:prefix": {"photos/"}}) {
			t.Error("matching value should pass")
		}
		if c.Evaluate(map[string][]string{"s3:prefix": {"video/"}}) {
			t.Error("non-matching value should fail")
		}
		if c.Evaluate(nil) {
			t.Error("absent key should fail a positive operator")
		}
	})

	t.Run("StringNotEquals", func(t *testing.T) {
		c := Conditions{OpStringNotEquals: {"s3:prefix": {"secret/"}}}
		if !c.Evaluate(map[string][]string{"s3:prefix": {"public/"}}) {
			t.Error("different value should pass the negated operator")
		}
		if c.Evaluate(map[string][]string{"s3:prefix": {"secret/"}}) {
			t.Error("equal value should fail the negated operator")
		}
	})

	t.Run("negated operators pass on absent key", func(t *testing.T) {
		tests := []struct {
			name string
			c    Conditions
		}{
			{"StringNotEquals", Conditions{OpStringNotEquals: {"s3:prefix": {"secret/"}}}},
			{"StringNotLike", Conditions{OpStringNotLike: {"s3:prefix": {"secret/*"}}}},
			{"NotIpAddress", Conditions{OpNotIPAddress: {"aws:SourceIp": {"10.0.0.0/8"}}}},
		}
		for _, tt := range tests {
			if !tt.c.Evaluate(nil) {
				t.Errorf("%s: absent key should pass a negated operator", tt.name)
			}
			if !tt.c.Evaluate(map[string][]string{}) {
				t.Errorf("%s: empty context should pass a negated operator", tt.name)
			}
		}
	})

	t.Run("StringLike", func(t *testing.T) {
		c := Conditions{OpStringLike: {"s3:prefix": {"reports/2024-*"}}}
		if !c.Evaluate(map[string][]string{"s3:prefix": {"reports/2024-06"}}) {
			t.Error("wildcard value should match")
		}
		if c.Evaluate(map[string][]string{"s3:prefix": {"reports/2023-06"}}) {
			t.Error("out-of-pattern value should fail")
		}
	})

	t.Run("IpAddress", func(t *testing.T) {
		c := Conditions{OpIPAddress: {"aws:SourceIp": {"10.0.0.0/8", "192.168.1.5"}}}
		if !c.Evaluate(map[string][]string{"aws:SourceIp": {"10.1.2.3"}}) {
			t.Error("in-CIDR address should pass")
		}
		if !c.Evaluate(map[string][]string{"aws:SourceIp": {"192.168.1.5"}}) {
			t.Error("bare-IP block should match exactly")
		}
		if c.Evaluate(map[string][]string{"aws:SourceIp": {"172.16.0.1"}}) {
			t.Error("outside address should fail")
		}
		if c.Evaluate(map[string][]string{"aws:SourceIp": {"not-an-ip"}}) {
			t.Error("unparseable address should fail")
		}
	})

	t.Run("NotIpAddress", func(t *testing.T) {
		c := Conditions{OpNotIPAddress: {"aws:SourceIp": {"10.0.0.0/8"}}}
		if !c.Evaluate(map[string][]string{"aws:SourceIp": {"172.16.0.1"}}) {
			t.Error("outside address should pass the negated operator")
		}
		if c.Evaluate(map[string][]string{"aws:SourceIp": {"10.1.2.3"}}) {
			t.Error("inside address should fail the negated operator")
		}
	})

	t.Run("Date comparisons", func(t *testing.T) {
		after := Conditions{OpDateGreaterThan: {"aws:CurrentTime": {"2024-01-01T00:00:00Z"}}}
		if !after.Evaluate(map[string][]string{"aws:CurrentTime": {"2024-06-01T00:00:00Z"}}) {
			t.Error("later date should pass DateGreaterThan")
		}
		if after.Evaluate(map[string][]string{"aws:CurrentTime": {"2023-06-01T00:00:00Z"}}) {
			t.Error("earlier date should fail DateGreaterThan")
		}
		if after.Evaluate(map[string][]string{"aws:CurrentTime": {"garbage"}}) {
			t.Error("unparseable date should fail")
		}
	})

	t.Run("Numeric comparisons", func(t *testing.T) {
		c := Conditions{OpNumericLessThan: {"s3:max-keys": {"100"}}}
		if !c.Evaluate(map[string][]string{"s3:max-keys": {"50"}}) {
			t.Error("smaller value should pass NumericLessThan")
		}
		if c.Evaluate(map[string][]string{"s3:max-keys": {"200"}}) {
			t.Error("larger value should fail NumericLessThan")
		}
	})

	t.Run("Bool", func(t *testing.T) {
		c := Conditions{OpBool: {"aws:SecureTransport": {"true"}}}
		if !c.Evaluate(map[string][]string{"aws:SecureTransport": {"true"}}) {
			t.Error("matching bool should pass")
		}
		if c.Evaluate(map[string][]string{"aws:SecureTransport": {"false"}}) {
			t.Error("mismatched bool should fail")
		}
	})

	t.Run("all pairs must hold", func(t *testing.T) {
		c := Conditions{
			OpStringEquals: {"s3:prefix": {"photos/"}},
			OpIPAddress:    {"aws:SourceIp": {"10.0.0.0/8"}},
		}
		if !c.Evaluate(map[string][]string{
			"s3:prefix":    {"photos/"},
			"aws:SourceIp": {"10.0.0.1"},
		}) {
			t.Error("both holding should pass")
		}
		if c.Evaluate(map[string][]string{
			"s3:prefix":    {"photos/"},
			"aws:SourceIp": {"172.16.0.1"},
		}) {
			t.Error("one failing pair should fail the block")
		}
	})
}

func TestConditionsValidate(t *testing.T) {
	if err := (Conditions{OpStringEquals: {"k": {"v"}}}).Validate(); err != nil {
		t.Errorf("valid block rejected: %v", err)
	}
	if err := (Conditions{"NoSuchOp": {"k": {"v"}}}).Validate(); err == nil {
		t.Error("unknown operator accepted")
	}
	if err := (Conditions{OpStringEquals: {"k": {}}}).Validate(); err == nil {
		t.Error("empty value list accepted")
	}
	if err := (Conditions{OpStringEquals: {}}).Validate(); err == nil {
		t.Error("operator with no keys accepted")
	}
}
