// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package models

import "time"

// Metadata key for the user-facing freshness indicator.
const ItemsLastSyncKey = "items_last_sync"

// SyncStatus is the read-only projection of the sync engine's state that the
// UI renders.
type SyncStatus struct {
	IsOnline     bool       `json:"is_online"`
	IsSyncing    bool       `json:"is_syncing"`
	PendingCount int        `json:"pending_count"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
}

// ReplayFailure pairs a queued operation with the error its remote replay
// produced. The operation stays in the queue for a future attempt.
type ReplayFailure struct {
	OperationID int64
	Err         error
}

// ReplayReport summarises one replay pass over the pending operation log.
// Succeeded lists operation IDs that were applied remotely and dequeued;
// Failed lists operations that were attempted and retained.
type ReplayReport struct {
	Succeeded []int64
	Failed    []ReplayFailure
}

// Attempted returns the number of operations the replay pass dispatched.
func (r ReplayReport) Attempted() int {
	return len(r.Succeeded) + len(r.Failed)
}

// OfflineData is the cache-backed fallback dataset served while
// disconnected. All slices are empty, not nil errors, when the cache has
// never been populated.
type OfflineData struct {
	Items        []Item        `json:"items"`
	Categories   []Category    `json:"categories"`
	Transactions []Transaction `json:"transactions"`
}

// Notification severity levels.
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notification is a transient, toast-style message surfaced to the user
// (connectivity changes, sync summaries, sync failures).
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
