// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package policy

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Condition operators supported in statement condition blocks. They follow
// the AWS IAM condition grammar: operator -> context key -> allowed values.
const (
	OpStringEquals       = "StringEquals"
	OpStringNotEquals    = "StringNotEquals"
	OpStringLike         = "StringLike"
	OpStringNotLike      = "StringNotLike"
	OpIPAddress          = "IpAddress"
	OpNotIPAddress       = "NotIpAddress"
	OpDateGreaterThan    = "DateGreaterThan"
	OpDateLessThan       = "DateLessThan"
	OpBool               = "Bool"
	OpNumericLessThan    = "NumericLessThan"
	OpNumericGreaterThan = "NumericGreaterThan"
)

// Conditions is the condition block of a statement: operator -> context
// key -> values. Every (operator, key) pair must evaluate true for the
// statement to match; within one pair, any value match suffices.
type Conditions map[string]map[string][]string

// Validate checks the block's operators are known and every key carries
// at least one value.
func (c Conditions) Validate() error {
	for op, keys := range c {
		if !knownOperator(op) {
			return fmt.Errorf("unknown condition operator %q", op)
		}
		if len(keys) == 0 {
			return fmt.Errorf("condition operator %q has no keys", op)
		}
		for key, values := range keys {
			if key == "" {
				return fmt.Errorf("condition operator %q has an empty key", op)
			}
			if len(values) == 0 {
				return fmt.Errorf("condition %s/%s has no values", op, key)
			}
		}
	}
	return nil
}

func knownOperator(op string) bool {
	switch op {
	case OpStringEquals, OpStringNotEquals, OpStringLike, OpStringNotLike,
		OpIPAddress, OpNotIPAddress, OpDateGreaterThan, OpDateLessThan,
		OpBool, OpNumericLessThan, OpNumericGreaterThan:
		return true
	}
	return false
}

// Evaluate reports whether every condition in the block holds against the
// request context values. A key absent from the context fails positive
// operators and passes the negated ones, matching AWS semantics closely
// enough for the operators supported here.
func (c Conditions) Evaluate(values map[string][]string) bool {
	for op, keys := range c {
		for key, allowed := range keys {
			if !evaluateCondition(op, values[key], allowed) {
				return false
			}
		}
	}
	return true
}

// evaluateCondition evaluates one (operator, key) pair. ctxValues are the
// request's values for the key; allowed are the statement's values.
func evaluateCondition(op string, ctxValues, allowed []string) bool {
	switch op {
	case OpStringEquals:
		return anyPair(ctxValues, allowed, func(v, a string) bool { return v == a })
	case OpStringNotEquals:
		return !anyPair(ctxValues, allowed, func(v, a string) bool { return v == a })
	case OpStringLike:
		return anyPair(ctxValues, allowed, func(v, a string) bool { return wildcardMatchSimple(a, v) })
	case OpStringNotLike:
		return !anyPair(ctxValues, allowed, func(v, a string) bool { return wildcardMatchSimple(a, v) })
	case OpIPAddress:
		return anyPair(ctxValues, allowed, ipInCIDR)
	case OpNotIPAddress:
		return !anyPair(ctxValues, allowed, ipInCIDR)
	case OpDateGreaterThan:
		return anyPair(ctxValues, allowed, func(v, a string) bool { return compareDates(v, a) > 0 })
	case OpDateLessThan:
		return anyPair(ctxValues, allowed, func(v, a string) bool { return compareDates(v, a) < 0 })
	case OpBool:
		return anyPair(ctxValues, allowed, func(v, a string) bool {
			return strings.EqualFold(v, a) && (strings.EqualFold(v, "true") || strings.EqualFold(v, "false"))
		})
	case OpNumericLessThan:
		return anyPair(ctxValues, allowed, func(v, a string) bool { return compareNumbers(v, a) < 0 })
	case OpNumericGreaterThan:
		return anyPair(ctxValues, allowed, func(v, a string) bool { return compareNumbers(v, a) > 0 })
	}
	return false
}

// anyPair reports whether match holds for any (context value, allowed value)
// combination.
func anyPair(ctxValues, allowed []string, match func(v, a string) bool) bool {
	for _, v := range ctxValues {
		for _, a := range allowed {
			if match(v, a) {
				return true
			}
		}
	}
	return false
}

// ipInCIDR reports whether addr falls inside the CIDR block. A bare IP in
// the policy is treated as a /32 (or /128) block.
func ipInCIDR(addr, block string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	if !strings.Contains(block, "/") {
		other := net.ParseIP(block)
		return other != nil && other.Equal(ip)
	}
	_, cidr, err := net.ParseCIDR(block)
	if err != nil {
		return false
	}
	return cidr.Contains(ip)
}

// compareDates compares two RFC3339 timestamps, returning -1, 0 or 1.
// Unparseable values compare as never-matching (returns 0 with both sides
// failing the strict comparisons used by callers).
func compareDates(a, b string) int {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA != nil || errB != nil {
		return 0
	}
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	}
	return 0
}

// compareNumbers compares two decimal values, returning -1, 0 or 1.
func compareNumbers(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return 0
	}
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}
