// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

package iam

import (
	"context"
	"time"

	"github.com/alimy/rustfs/internal/logging"
)

// Refresher reloads the IAM snapshot on a fixed interval and whenever a
// mutation signals invalidation. It satisfies suture.Service and is meant
// to run under the process supervision tree.
type Refresher struct {
	sys      *Sys
	interval time.Duration
}

// NewRefresher creates the periodic refresher for sys.
func NewRefresher(sys *Sys, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{sys: sys, interval: interval}
}

// Serve runs until the context is canceled. The initial load happens here
// rather than in New so a temporarily unavailable store at boot degrades
// to root-only service instead of failing startup; the supervisor restart
// policy covers persistent failures.
func (r *Refresher) Serve(ctx context.Context) error {
	if err := r.sys.refresh(ctx, triggerStartup); err != nil {
		logging.Error().Err(err).Msg("initial IAM load failed; serving root-only until the store recovers")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.sys.refresh(ctx, triggerPeriodic); err != nil {
				logging.Warn().Err(err).Msg("periodic IAM refresh failed; previous snapshot remains current")
			}
		case <-r.sys.invalidateCh:
			if err := r.sys.refresh(ctx, triggerMutation); err != nil {
				logging.Warn().Err(err).Msg("mutation-triggered IAM refresh failed; previous snapshot remains current")
			}
		}
	}
}

func (r *Refresher) String() string {
	return "iam-refresher"
}
