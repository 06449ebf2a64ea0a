// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package service contains the client's business layer: the sync engine that
// reconciles offline work with the remote store, the inventory service that
// routes writes online or into the pending queue, and the status service
// that projects sync state for the UI.
package service

import (
	"context"
	"time"

	"github.com/ademidova/go-stock-keeper/internal/netmon"
	"github.com/ademidova/go-stock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// ConnectivityMonitor exposes the connectivity state and its transitions.
// Satisfied by [netmon.Monitor].
type ConnectivityMonitor interface {
	IsOnline() bool
	Subscribe() <-chan netmon.Event
}

// Notifier receives transient user-facing notifications. Delivery is best
// effort; implementations must never block the caller.
type Notifier interface {
	Notify(n models.Notification)
}

// SyncEngine reconciles local offline state with the remote store.
type SyncEngine interface {
	// SyncPendingOperations replays the pending operation log against the
	// remote store in FIFO order, then refreshes the cache. It is a no-op
	// (empty report, nil error) while offline or while another replay is in
	// flight. Failed operations are retained for a later attempt.
	SyncPendingOperations(ctx context.Context) (models.ReplayReport, error)

	// RefreshFromServer overwrites the local cache from the remote store.
	// Collections refresh independently; per-collection failures are logged
	// and swallowed. Rows still waiting on a queued operation keep their
	// optimistic payload instead of being replaced by the server snapshot.
	// No-op while offline or while a refresh is in flight.
	RefreshFromServer(ctx context.Context)

	// GetOfflineData returns the cache-backed dataset. Slices are empty when
	// the cache was never populated.
	GetOfflineData(ctx context.Context) (models.OfflineData, error)

	// IsSyncing reports whether a replay or refresh pass is in flight.
	IsSyncing() bool

	// LastSyncTime returns when the item cache was last refreshed from the
	// server, or nil if it never was.
	LastSyncTime(ctx context.Context) *time.Time
}

// InventoryService is the write and read path for warehouse entities. Writes
// go straight to the remote store while online and into the pending
// operation log while offline; reads always come from the local cache.
type InventoryService interface {
	CreateItem(ctx context.Context, item models.Item) (models.Item, error)
	UpdateItem(ctx context.Context, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, category models.Category) (models.Category, error)
	RecordTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)

	ListItems(ctx context.Context) ([]models.Item, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListRecentTransactions(ctx context.Context) ([]models.Transaction, error)

	// LowStockItems returns cached items whose quantity is at or below their
	// minimum. Computed client-side over the cache.
	LowStockItems(ctx context.Context) ([]models.Item, error)

	// ExpiringBatches returns cached batches expiring within the window.
	ExpiringBatches(ctx context.Context, within time.Duration) ([]models.Batch, error)
}

// StatusService projects sync state for the UI and relays manual actions.
type StatusService interface {
	// Status assembles the current sync status projection.
	Status(ctx context.Context) (models.SyncStatus, error)

	// Notifications streams transient messages for the UI to toast.
	Notifications() <-chan models.Notification

	// Sync triggers a replay pass (manual "sync now").
	Sync(ctx context.Context) (models.ReplayReport, error)

	// Refresh triggers a cache refresh (manual "pull latest").
	Refresh(ctx context.Context)

	// Run watches connectivity transitions until ctx is cancelled: a flip to
	// online triggers one replay pass, a flip to offline emits a warning.
	Run(ctx context.Context)
}
