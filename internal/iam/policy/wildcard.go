// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package policy

// wildcardMatch reports whether text matches pattern. The pattern may
// contain '*' (any sequence, including empty) and '?' (exactly one
// character). Matching is case-sensitive.
//
// The implementation is iterative with backtracking over the last '*'
// position, so a pathological pattern cannot blow the stack.
func wildcardMatch(pattern, text string) bool {
	if pattern == "*" {
		return true
	}

	var pi, ti int
	star := -1
	match := 0

	for ti < len(text) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == text[ti]):
			pi++
			ti++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			match = ti
			pi++
		case star != -1:
			// Backtrack: let the last '*' absorb one more character.
			pi = star + 1
			match++
			ti = match
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

// wildcardMatchSimple is wildcardMatch restricted to '*' only; '?' is
// treated as a literal. Used for condition value matching where '?' is
// a legal character.
func wildcardMatchSimple(pattern, text string) bool {
	if pattern == "*" {
		return true
	}

	var pi, ti int
	star := -1
	match := 0

	for ti < len(text) {
		switch {
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			match = ti
			pi++
		case pi < len(pattern) && pattern[pi] == text[ti]:
			pi++
			ti++
		case star != -1:
			pi = star + 1
			match++
			ti = match
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
