// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package iam

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alimy/rustfs/internal/config"
	"github.com/alimy/rustfs/internal/logging"
)

// syncBuffer guards a bytes.Buffer against the audit logger's background
// goroutine writing while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureAuditLog redirects the global logger into a buffer for the
// duration of the test.
func captureAuditLog(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(buf))
	t.Cleanup(func() { logging.SetLogger(prev) })
	return buf
}

func countFieldValue(s, field, value string) int {
	return strings.Count(s, `"`+field+`":`+value)
}

func TestAuditSamplingAppliesToAllowedDecisions(t *testing.T) {
	buf := captureAuditLog(t)

	al := NewAuditLogger(config.AuditConfig{
		Enabled:       true,
		LogAllowed:    true,
		LogDenied:     true,
		SampleRate:    0.5,
		BufferSize:    512,
		FlushInterval: time.Second,
	})

	for i := 0; i < 100; i++ {
		al.LogDecision(&AuditEvent{
			AccessKey: "alice",
			Action:    "s3:GetObject",
			Resource:  "data/report.csv",
			Allowed:   true,
		})
	}
	al.Close()

	require.Equal(t, 50, countFieldValue(buf.String(), "allowed", "true"),
		"half of the allowed decisions should survive a 0.5 sample rate")
}

func TestAuditDenialsBypassSampling(t *testing.T) {
	buf := captureAuditLog(t)

	al := NewAuditLogger(config.AuditConfig{
		Enabled:       true,
		LogAllowed:    true,
		LogDenied:     true,
		SampleRate:    0.01,
		BufferSize:    512,
		FlushInterval: time.Second,
	})

	for i := 0; i < 100; i++ {
		al.LogDecision(&AuditEvent{
			AccessKey: "alice",
			Action:    "s3:GetObject",
			Resource:  "data/report.csv",
			Allowed:   true,
		})
	}
	for i := 0; i < 10; i++ {
		al.LogDecision(&AuditEvent{
			AccessKey: "bob",
			Action:    "s3:PutObject",
			Resource:  "data/report.csv",
			Allowed:   false,
			Reason:    ReasonExplicitDeny,
		})
	}
	al.Close()

	out := buf.String()
	require.Equal(t, 1, countFieldValue(out, "allowed", "true"))
	require.Equal(t, 10, countFieldValue(out, "allowed", "false"),
		"denials log at full rate regardless of sample rate")
}

func TestAuditFlushIntervalWritesPartialBatch(t *testing.T) {
	buf := captureAuditLog(t)

	al := NewAuditLogger(config.AuditConfig{
		Enabled:       true,
		LogAllowed:    true,
		LogDenied:     true,
		SampleRate:    1.0,
		BufferSize:    512,
		FlushInterval: 10 * time.Millisecond,
	})
	defer al.Close()

	for i := 0; i < 3; i++ {
		al.LogDecision(&AuditEvent{
			AccessKey: "carol",
			Action:    "s3:ListBucket",
			Resource:  "data",
			Allowed:   true,
		})
	}

	// Three events never fill a batch, so only the interval flush can
	// write them out before Close.
	require.Eventually(t, func() bool {
		return countFieldValue(buf.String(), "allowed", "true") == 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAuditDisabledDropsEverything(t *testing.T) {
	buf := captureAuditLog(t)

	al := NewAuditLogger(config.AuditConfig{Enabled: false})
	al.LogDecision(&AuditEvent{AccessKey: "alice", Allowed: false})
	al.Close()

	require.Empty(t, buf.String())
}
