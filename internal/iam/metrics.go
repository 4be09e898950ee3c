// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Prometheus metrics for the IAM core: authorization decision outcomes and
// latency, decision-cache effectiveness, snapshot refresh health, and
// mutation counts.

package iam

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Authorization decision metrics

	// IAMDecisionsTotal counts authorization decisions by outcome and reason.
	IAMDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_decisions_total",
			Help: "Total number of IAM authorization decisions",
		},
		[]string{"decision", "reason"},
	)

	// IAMDecisionDuration tracks authorization latency.
	IAMDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "iam_decision_duration_seconds",
			Help: "Duration of IAM authorization decisions in seconds",
			// Buckets tuned for in-memory evaluation (microseconds to low milliseconds)
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"cache_hit"},
	)

	// Decision cache metrics

	// IAMCacheHitsTotal counts decision-cache hits.
	IAMCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iam_decision_cache_hits_total",
			Help: "Total number of IAM decision cache hits",
		},
	)

	// IAMCacheMissesTotal counts decision-cache misses.
	IAMCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iam_decision_cache_misses_total",
			Help: "Total number of IAM decision cache misses",
		},
	)

	// Snapshot refresh metrics

	// IAMRefreshTotal counts snapshot refresh attempts by outcome.
	IAMRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_snapshot_refresh_total",
			Help: "Total number of IAM snapshot refresh attempts",
		},
		[]string{"outcome", "trigger"},
	)

	// IAMRefreshDuration tracks full reload-and-rebuild latency.
	IAMRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iam_snapshot_refresh_duration_seconds",
			Help:    "Duration of IAM snapshot refreshes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// IAMSnapshotGeneration exposes the current snapshot generation.
	IAMSnapshotGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iam_snapshot_generation",
			Help: "Generation number of the currently published IAM snapshot",
		},
	)

	// IAMSnapshotPrincipals sizes the current snapshot.
	IAMSnapshotPrincipals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iam_snapshot_principals",
			Help: "Number of principals in the currently published IAM snapshot",
		},
	)

	// Mutation metrics

	// IAMMutationsTotal counts administrative mutations by operation and outcome.
	IAMMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_mutations_total",
			Help: "Total number of IAM administrative mutations",
		},
		[]string{"operation", "outcome"},
	)
)

// RecordDecision records one authorization decision.
func RecordDecision(allowed bool, reason string, duration time.Duration, cacheHit bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	if reason == "" {
		reason = "none"
	}
	IAMDecisionsTotal.WithLabelValues(decision, reason).Inc()

	hit := "false"
	if cacheHit {
		hit = "true"
	}
	IAMDecisionDuration.WithLabelValues(hit).Observe(duration.Seconds())

	if cacheHit {
		IAMCacheHitsTotal.Inc()
	} else {
		IAMCacheMissesTotal.Inc()
	}
}

// RecordRefresh records one snapshot refresh attempt.
func RecordRefresh(err error, trigger string, duration time.Duration, snap *Snapshot) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	IAMRefreshTotal.WithLabelValues(outcome, trigger).Inc()
	IAMRefreshDuration.Observe(duration.Seconds())

	if err == nil && snap != nil {
		IAMSnapshotGeneration.Set(float64(snap.Generation))
		IAMSnapshotPrincipals.Set(float64(snap.UserCount()))
	}
}

// RecordMutation records one administrative mutation.
func RecordMutation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	IAMMutationsTotal.WithLabelValues(operation, outcome).Inc()
}
