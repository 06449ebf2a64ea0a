// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package workers

import (
	"context"
	"time"

	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/store"
)

type pendingCountWorker struct {
	ctx      context.Context
	queue    store.QueueRepository
	interval time.Duration
	onCount  func(count int)
	logger   *logger.Logger
}

// NewPendingCountWorker returns a worker that keeps the UI's pending-change
// counter current. It re-counts on every queue change signal and on a
// fallback ticker, and reports the result through onCount. If interval is
// zero or negative it defaults to 5 seconds.
func NewPendingCountWorker(ctx context.Context, queue store.QueueRepository, interval time.Duration, onCount func(count int), log *logger.Logger) Worker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &pendingCountWorker{
		ctx:      ctx,
		queue:    queue,
		interval: interval,
		onCount:  onCount,
		logger:   log,
	}
}

func (w *pendingCountWorker) Run() {
	go func() {
		changes := w.queue.Changes()

		t := time.NewTicker(w.interval)
		defer t.Stop()

		w.report()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-changes:
				w.report()
			case <-t.C:
				w.report()
			}
		}
	}()
}

func (w *pendingCountWorker) report() {
	count, err := w.queue.Count(w.ctx)
	if err != nil {
		w.logger.Err(err).
			Str("func", "pendingCountWorker.report").
			Msg("failed to count pending operations")
		return
	}
	w.onCount(count)
}
