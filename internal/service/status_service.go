// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/store"
	"github.com/ademidova/go-stock-keeper/models"
)

type statusService struct {
	engine SyncEngine
	queue  store.QueueRepository
	cache  store.CacheRepository
	net    ConnectivityMonitor
	hub    *NotificationHub
	logger *logger.Logger
}

// NewStatusService assembles the UI-facing sync status projection and the
// connectivity reaction loop.
func NewStatusService(
	engine SyncEngine,
	queue store.QueueRepository,
	cache store.CacheRepository,
	net ConnectivityMonitor,
	hub *NotificationHub,
	log *logger.Logger,
) StatusService {
	if log == nil {
		log = logger.Nop()
	}

	return &statusService{
		engine: engine,
		queue:  queue,
		cache:  cache,
		net:    net,
		hub:    hub,
		logger: log,
	}
}

func (s *statusService) Status(ctx context.Context) (models.SyncStatus, error) {
	pending, err := s.queue.Count(ctx)
	if err != nil {
		return models.SyncStatus{}, fmt.Errorf("count pending operations: %w", err)
	}

	return models.SyncStatus{
		IsOnline:     s.net.IsOnline(),
		IsSyncing:    s.engine.IsSyncing(),
		PendingCount: pending,
		LastSyncTime: s.engine.LastSyncTime(ctx),
	}, nil
}

func (s *statusService) Notifications() <-chan models.Notification {
	return s.hub.Stream()
}

func (s *statusService) Sync(ctx context.Context) (models.ReplayReport, error) {
	return s.engine.SyncPendingOperations(ctx)
}

func (s *statusService) Refresh(ctx context.Context) {
	s.engine.RefreshFromServer(ctx)
}

// Run reacts to connectivity transitions: regaining connectivity triggers
// exactly one replay pass per transition, losing it emits a warning. Blocks
// until ctx is cancelled.
func (s *statusService) Run(ctx context.Context) {
	events := s.net.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if ev.Online {
				s.onBackOnline(ctx)
				continue
			}
			s.onOffline(ctx)
		}
	}
}

// onOffline warns the user, distinguishing whether any cached data exists to
// fall back on. A client that went offline before its first refresh has
// nothing to show until connectivity returns.
func (s *statusService) onOffline(ctx context.Context) {
	message := "Connection lost, changes will be queued locally"

	cached, err := s.cache.Count(ctx, models.CollectionItems)
	if err != nil {
		s.logger.Err(err).
			Str("func", "statusService.onOffline").
			Msg("failed to count cached items")
	} else if cached == 0 {
		message = "Connection lost, no cached data is available yet"
	}

	s.hub.Notify(models.Notification{
		Level:   models.NoticeWarning,
		Message: message,
		At:      time.Now(),
	})
}

func (s *statusService) onBackOnline(ctx context.Context) {
	s.hub.Notify(models.Notification{
		Level:   models.NoticeInfo,
		Message: "Back online, syncing pending changes",
		At:      time.Now(),
	})

	if _, err := s.engine.SyncPendingOperations(ctx); err != nil {
		s.logger.Err(err).
			Str("func", "statusService.onBackOnline").
			Msg("replay after reconnect failed")
		s.hub.Notify(models.Notification{
			Level:   models.NoticeError,
			Message: "Sync failed, pending changes are kept locally",
			At:      time.Now(),
		})
	}
}
