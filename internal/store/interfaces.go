// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package store implements the on-device persistence layer: the local entity
// cache, the pending operation log, and the sync metadata table, all backed
// by a single SQLite file.
package store

import (
	"context"
	"encoding/json"

	"github.com/ademidova/go-stock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CacheRepository is the local entity cache: one durable key/value store per
// collection plus the flat sync-metadata table used for bookkeeping.
//
// Put is a full-overwrite upsert — a fresh value for an id replaces the
// stored payload entirely, never a field merge. Each Put is its own
// transaction, so a failing put cannot corrupt records stored for other ids.
type CacheRepository interface {
	// Put upserts one record. synced marks whether the payload is known to
	// match the server (refresh) or is an optimistic offline write.
	Put(ctx context.Context, collection models.Collection, id string, data json.RawMessage, synced bool) error

	// GetAll returns every cached record of a collection. Order is
	// unspecified; callers must not rely on it.
	GetAll(ctx context.Context, collection models.Collection) ([]models.CachedRecord, error)

	// Delete removes a single record. Deleting an absent id is not an
	// error. Used for optimistic offline deletes.
	Delete(ctx context.Context, collection models.Collection, id string) error

	// Clear removes all records of a collection. Used on full cache
	// invalidation (e.g. logout).
	Clear(ctx context.Context, collection models.Collection) error

	// Count reports how many records a collection holds, which tells callers
	// whether any offline fallback data exists at all.
	Count(ctx context.Context, collection models.Collection) (int, error)

	// SetMetadata stores a sync bookkeeping value under key.
	SetMetadata(ctx context.Context, key, value string) error

	// GetMetadata returns the value stored under key, or
	// [ErrMetadataNotFound] if the key has never been written.
	GetMetadata(ctx context.Context, key string) (string, error)
}

// QueueRepository is the pending operation log: an append-only queue of
// mutations performed while disconnected.
//
// The log never reorders or coalesces entries. The auto-incremented id is
// both the primary key and the FIFO replay order key, because a later
// update/delete may depend on an earlier create having been applied.
type QueueRepository interface {
	// Enqueue appends one operation and returns its assigned id.
	Enqueue(ctx context.Context, opType models.OperationType, collection models.Collection, payload json.RawMessage) (int64, error)

	// ListAll returns all pending operations in ascending id order
	// (creation order).
	ListAll(ctx context.Context) ([]models.PendingOperation, error)

	// Remove deletes a single entry. Removing a non-existent id is not an
	// error.
	Remove(ctx context.Context, operationID int64) error

	// Count returns the number of pending operations.
	Count(ctx context.Context) (int, error)

	// Changes delivers a signal whenever the queue contents change
	// (enqueue or remove). The channel is never closed; signals may be
	// dropped when the consumer lags, so consumers should re-read Count.
	Changes() <-chan struct{}
}
