// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

/*
audit.go - Authorization Decision Audit Logging

Records authorization decisions asynchronously for security monitoring and
forensic analysis. Events capture the full decision context including the
statement ids that matched during evaluation. Logging is buffered and
non-blocking: the serving path never waits on the audit sink, and events
are dropped (with a warning) rather than stalling a request when the
buffer is full.
*/

package iam

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alimy/rustfs/internal/config"
	"github.com/alimy/rustfs/internal/logging"
)

// AuditEvent captures one authorization decision.
type AuditEvent struct {
	// ID is a unique identifier for this audit event.
	ID string `json:"id"`

	// Timestamp is when the decision was made.
	Timestamp time.Time `json:"timestamp"`

	// AccessKey identifies the requesting credential.
	AccessKey string `json:"access_key"`

	// Principal is the resolved principal id (parent for sessions).
	Principal string `json:"principal,omitempty"`

	// SessionID is set for session credentials.
	SessionID string `json:"session_id,omitempty"`

	// Action and Resource describe the request.
	Action   string `json:"action"`
	Resource string `json:"resource"`

	// Allowed is the decision outcome.
	Allowed bool `json:"allowed"`

	// Reason is the coarse reason code for denials.
	Reason string `json:"reason,omitempty"`

	// MatchedSIDs lists the statement ids that matched during evaluation.
	MatchedSIDs []string `json:"matched_sids,omitempty"`

	// Duration is the evaluation latency.
	Duration time.Duration `json:"duration_ns"`

	// CacheHit indicates the decision came from the decision cache.
	CacheHit bool `json:"cache_hit"`
}

// auditBatchSize caps how many events accumulate before a flush is
// forced ahead of the flush interval.
const auditBatchSize = 64

// AuditLogger handles async logging of authorization decisions.
type AuditLogger struct {
	cfg      config.AuditConfig
	events   chan *AuditEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	seq      atomic.Uint64
}

// NewAuditLogger creates an audit logger with the given configuration.
func NewAuditLogger(cfg config.AuditConfig) *AuditLogger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.SampleRate <= 0 || cfg.SampleRate > 1.0 {
		cfg.SampleRate = 1.0
	}

	al := &AuditLogger{
		cfg:      cfg,
		events:   make(chan *AuditEvent, cfg.BufferSize),
		stopChan: make(chan struct{}),
	}

	if cfg.Enabled {
		al.wg.Add(1)
		go al.processEvents()
	}

	return al
}

// LogDecision records an authorization decision asynchronously.
// Non-blocking; events are dropped if the buffer is full.
func (al *AuditLogger) LogDecision(event *AuditEvent) {
	if al == nil || !al.cfg.Enabled {
		return
	}

	if event.Allowed {
		if !al.cfg.LogAllowed {
			return
		}
		// Counter-based sampling for allowed decisions; denials always
		// log at full rate when enabled.
		if al.cfg.SampleRate < 1.0 {
			if al.seq.Add(1)%100 >= uint64(al.cfg.SampleRate*100) {
				return
			}
		}
	} else if !al.cfg.LogDenied {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case al.events <- event:
	default:
		logging.Warn().
			Str("access_key", event.AccessKey).
			Str("resource", event.Resource).
			Msg("IAM audit buffer full, event dropped")
	}
}

// processEvents batches buffered events and writes them out on every
// flush interval, or earlier once a batch fills.
func (al *AuditLogger) processEvents() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEvent, 0, auditBatchSize)
	flush := func() {
		for _, event := range batch {
			al.writeEvent(event)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-al.stopChan:
			flush()
			al.drainEvents()
			return
		case event := <-al.events:
			batch = append(batch, event)
			if len(batch) >= auditBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// drainEvents processes any remaining events in the buffer.
func (al *AuditLogger) drainEvents() {
	for {
		select {
		case event := <-al.events:
			al.writeEvent(event)
		default:
			return
		}
	}
}

// writeEvent outputs the event to the log.
func (al *AuditLogger) writeEvent(event *AuditEvent) {
	logEvent := logging.Info()
	if !event.Allowed {
		logEvent = logging.Warn()
	}

	logEvent = logEvent.
		Str("event_type", "iam_decision").
		Str("audit_id", event.ID).
		Time("audit_timestamp", event.Timestamp).
		Str("access_key", event.AccessKey).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Bool("allowed", event.Allowed).
		Dur("duration", event.Duration).
		Bool("cache_hit", event.CacheHit)

	if event.Principal != "" {
		logEvent = logEvent.Str("principal", event.Principal)
	}
	if event.SessionID != "" {
		logEvent = logEvent.Str("session_id", event.SessionID)
	}
	if event.Reason != "" {
		logEvent = logEvent.Str("reason", event.Reason)
	}
	if len(event.MatchedSIDs) > 0 {
		logEvent = logEvent.Strs("matched_sids", event.MatchedSIDs)
	}

	logEvent.Msg("IAM authorization decision")
}

// Close stops the logger and drains buffered events.
func (al *AuditLogger) Close() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.stopChan)
		al.wg.Wait()
	})
}
