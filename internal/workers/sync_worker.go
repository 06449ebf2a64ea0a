// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package workers

import (
	"context"
	"time"

	"github.com/ademidova/go-stock-keeper/internal/service"
)

type periodicSyncWorker struct {
	ctx      context.Context
	engine   service.SyncEngine
	interval time.Duration
}

// NewPeriodicSyncWorker returns a worker that triggers a replay pass every
// interval. The engine's own guards make the tick a no-op while offline or
// while a sync is already running. If interval is zero or negative it
// defaults to 5 minutes.
func NewPeriodicSyncWorker(ctx context.Context, engine service.SyncEngine, interval time.Duration) Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &periodicSyncWorker{ctx: ctx, engine: engine, interval: interval}
}

func (w *periodicSyncWorker) Run() {
	go func() {
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-t.C:
				_, _ = w.engine.SyncPendingOperations(w.ctx)
			}
		}
	}()
}
