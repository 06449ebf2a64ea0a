// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ademidova/go-stock-keeper/internal/adapter"
	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/store"
	"github.com/ademidova/go-stock-keeper/models"
)

// recentTransactionsLimit bounds the transaction refresh query; older
// transactions stay on the server only.
const recentTransactionsLimit = 100

type syncEngine struct {
	cache    store.CacheRepository
	queue    store.QueueRepository
	remote   adapter.RemoteStore
	net      ConnectivityMonitor
	notifier Notifier
	logger   *logger.Logger

	requestTimeout time.Duration

	replaying  atomic.Bool
	refreshing atomic.Bool
}

// NewSyncEngine wires the sync engine over the local storages, the remote
// store and the connectivity monitor. requestTimeout bounds every individual
// remote call so a stuck request cannot hold the in-flight guard forever; if
// zero or negative it defaults to 15 seconds.
func NewSyncEngine(
	cache store.CacheRepository,
	queue store.QueueRepository,
	remote adapter.RemoteStore,
	net ConnectivityMonitor,
	notifier Notifier,
	requestTimeout time.Duration,
	log *logger.Logger,
) SyncEngine {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &syncEngine{
		cache:          cache,
		queue:          queue,
		remote:         remote,
		net:            net,
		notifier:       notifier,
		logger:         log,
		requestTimeout: requestTimeout,
	}
}

func (e *syncEngine) IsSyncing() bool {
	return e.replaying.Load() || e.refreshing.Load()
}

func (e *syncEngine) SyncPendingOperations(ctx context.Context) (models.ReplayReport, error) {
	var report models.ReplayReport

	if !e.net.IsOnline() {
		return report, nil
	}
	if !e.replaying.CompareAndSwap(false, true) {
		return report, nil
	}
	defer e.replaying.Store(false)

	ops, err := e.queue.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("list pending operations: %w", err)
	}

	for _, op := range ops {
		if applyErr := e.applyOperation(ctx, op); applyErr != nil {
			e.logger.Err(applyErr).
				Str("func", "syncEngine.SyncPendingOperations").
				Int64("operation_id", op.ID).
				Str("type", string(op.Type)).
				Str("collection", op.Table.String()).
				Msg("pending operation replay failed, keeping it queued")
			report.Failed = append(report.Failed, models.ReplayFailure{OperationID: op.ID, Err: applyErr})
			continue
		}

		if removeErr := e.queue.Remove(ctx, op.ID); removeErr != nil {
			// The remote already applied the operation; a repeated replay is
			// harmless because rows carry client-generated ids.
			e.logger.Err(removeErr).
				Str("func", "syncEngine.SyncPendingOperations").
				Int64("operation_id", op.ID).
				Msg("failed to dequeue a replayed operation")
		}
		report.Succeeded = append(report.Succeeded, op.ID)
	}

	e.RefreshFromServer(ctx)

	if report.Attempted() > 0 {
		e.notifySummary(report)
	}

	return report, nil
}

func (e *syncEngine) applyOperation(ctx context.Context, op models.PendingOperation) error {
	opCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	switch op.Type {
	case models.OperationCreate:
		row, err := e.remote.Insert(opCtx, op.Table, op.Data)
		if err != nil {
			return err
		}
		e.markRowSynced(ctx, op.Table, row)
		return nil
	case models.OperationUpdate:
		id, err := payloadID(op.Data)
		if err != nil {
			return err
		}
		row, err := e.remote.Update(opCtx, op.Table, id, op.Data)
		if err != nil {
			return err
		}
		e.markRowSynced(ctx, op.Table, row)
		return nil
	case models.OperationDelete:
		id, err := payloadID(op.Data)
		if err != nil {
			return err
		}
		if err = e.remote.Delete(opCtx, op.Table, id); err != nil {
			return err
		}
		e.dropRow(ctx, op.Table, id)
		return nil
	default:
		return fmt.Errorf("%w: %q", store.ErrInvalidOperation, op.Type)
	}
}

// markRowSynced replaces the optimistic cache entry with the row the server
// stored, so the trailing refresh treats it as a regular snapshot row.
func (e *syncEngine) markRowSynced(ctx context.Context, collection models.Collection, row json.RawMessage) {
	id, err := payloadID(row)
	if err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.markRowSynced").
			Str("collection", collection.String()).
			Msg("replayed row has no id, cache entry stays unsynced")
		return
	}
	if err = e.cache.Put(ctx, collection, id, row, true); err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.markRowSynced").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to cache replayed row")
	}
}

func (e *syncEngine) dropRow(ctx context.Context, collection models.Collection, id string) {
	if err := e.cache.Delete(ctx, collection, id); err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.dropRow").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to drop replayed delete from cache")
	}
}

func payloadID(data json.RawMessage) (string, error) {
	var row struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return "", fmt.Errorf("decode operation payload: %w", err)
	}
	if row.ID == "" {
		return "", ErrMissingID
	}
	return row.ID, nil
}

func (e *syncEngine) notifySummary(report models.ReplayReport) {
	level := models.NoticeInfo
	if len(report.Failed) > 0 {
		level = models.NoticeWarning
	}

	e.notifier.Notify(models.Notification{
		Level:   level,
		Message: fmt.Sprintf("Synced %d of %d pending operations", len(report.Succeeded), report.Attempted()),
		At:      time.Now(),
	})
}

// RefreshFromServer pulls every collection independently. A failing
// collection keeps its previous cache contents; the others still refresh.
func (e *syncEngine) RefreshFromServer(ctx context.Context) {
	if !e.net.IsOnline() {
		return
	}
	if !e.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer e.refreshing.Store(false)

	e.refreshItems(ctx)
	e.refreshCategories(ctx)
	e.refreshTransactions(ctx)
}

func (e *syncEngine) refreshItems(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	items, err := e.remote.FetchItems(callCtx)
	if err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.refreshItems").
			Msg("items refresh failed, keeping cached items")
		return
	}

	batches := make([]models.Batch, 0)
	for _, item := range items {
		batches = append(batches, item.Batches...)
	}

	e.overwriteCollection(ctx, models.CollectionItems, len(items), func(put putFunc) {
		for _, item := range items {
			put(item.ID, item)
		}
	})
	// Batch rows ride along inside the expanded items, so the batch cache
	// refreshes from the same response.
	e.overwriteCollection(ctx, models.CollectionBatches, len(batches), func(put putFunc) {
		for _, batch := range batches {
			put(batch.ID, batch)
		}
	})
}

func (e *syncEngine) refreshCategories(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	categories, err := e.remote.FetchCategories(callCtx)
	if err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.refreshCategories").
			Msg("categories refresh failed, keeping cached categories")
		return
	}

	e.overwriteCollection(ctx, models.CollectionCategories, len(categories), func(put putFunc) {
		for _, category := range categories {
			put(category.ID, category)
		}
	})
}

func (e *syncEngine) refreshTransactions(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	transactions, err := e.remote.FetchRecentTransactions(callCtx, recentTransactionsLimit)
	if err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.refreshTransactions").
			Msg("transactions refresh failed, keeping cached transactions")
		return
	}

	e.overwriteCollection(ctx, models.CollectionTransactions, len(transactions), func(put putFunc) {
		for _, tx := range transactions {
			put(tx.ID, tx)
		}
	})
}

type putFunc func(id string, v any)

// overwriteCollection replaces a collection's snapshot with fresh server
// rows, then stamps its last-sync marker. Rows written offline and not yet
// replayed keep their optimistic payload: a server snapshot must never hide
// work that is still queued. Individual put failures are logged and skipped
// so one bad record cannot abort the rest of the refresh.
func (e *syncEngine) overwriteCollection(ctx context.Context, collection models.Collection, size int, fill func(putFunc)) {
	pending, err := e.pendingRows(ctx, collection)
	if err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.overwriteCollection").
			Str("collection", collection.String()).
			Msg("failed to read cached rows, keeping previous snapshot")
		return
	}

	if err = e.cache.Clear(ctx, collection); err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.overwriteCollection").
			Str("collection", collection.String()).
			Msg("failed to clear collection before refresh")
		return
	}

	stored := 0
	fill(func(id string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			e.logger.Err(err).
				Str("func", "syncEngine.overwriteCollection").
				Str("collection", collection.String()).
				Str("id", id).
				Msg("failed to encode server row for caching")
			return
		}
		if err = e.cache.Put(ctx, collection, id, data, true); err != nil {
			e.logger.Err(err).
				Str("func", "syncEngine.overwriteCollection").
				Str("collection", collection.String()).
				Str("id", id).
				Msg("failed to cache server row")
			return
		}
		stored++
	})

	kept := 0
	for _, record := range pending {
		if err = e.cache.Put(ctx, collection, record.ID, record.Data, false); err != nil {
			e.logger.Err(err).
				Str("func", "syncEngine.overwriteCollection").
				Str("collection", collection.String()).
				Str("id", record.ID).
				Msg("failed to restore optimistic row after refresh")
			continue
		}
		kept++
	}

	if err := e.cache.SetMetadata(ctx, collection.LastSyncKey(), time.Now().UTC().Format(time.RFC3339)); err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.overwriteCollection").
			Str("collection", collection.String()).
			Msg("failed to stamp last-sync marker")
	}

	e.logger.Info().
		Str("func", "syncEngine.overwriteCollection").
		Str("collection", collection.String()).
		Int("fetched", size).
		Int("stored", stored).
		Int("kept", kept).
		Msg("collection cache refreshed")
}

// pendingRows snapshots a collection's unsynced records before the snapshot
// overwrite. A record stays unsynced exactly while its queued operation has
// not replayed successfully, so these are the rows the refresh must carry
// over.
func (e *syncEngine) pendingRows(ctx context.Context, collection models.Collection) ([]models.CachedRecord, error) {
	records, err := e.cache.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	var pending []models.CachedRecord
	for _, record := range records {
		if !record.Synced {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

func (e *syncEngine) GetOfflineData(ctx context.Context) (models.OfflineData, error) {
	data := models.OfflineData{
		Items:        []models.Item{},
		Categories:   []models.Category{},
		Transactions: []models.Transaction{},
	}

	items, err := decodeCollection[models.Item](ctx, e.cache, e.logger, models.CollectionItems)
	if err != nil {
		return data, err
	}
	categories, err := decodeCollection[models.Category](ctx, e.cache, e.logger, models.CollectionCategories)
	if err != nil {
		return data, err
	}
	transactions, err := decodeCollection[models.Transaction](ctx, e.cache, e.logger, models.CollectionTransactions)
	if err != nil {
		return data, err
	}

	data.Items = items
	data.Categories = categories
	data.Transactions = transactions
	return data, nil
}

// decodeCollection reads one cached collection and decodes its payloads.
// Records that no longer decode are logged and skipped rather than failing
// the whole offline read.
func decodeCollection[T any](ctx context.Context, cache store.CacheRepository, log *logger.Logger, collection models.Collection) ([]T, error) {
	records, err := cache.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read cached %s: %w", collection, err)
	}

	out := make([]T, 0, len(records))
	for _, record := range records {
		var v T
		if err := json.Unmarshal(record.Data, &v); err != nil {
			log.Err(err).
				Str("func", "decodeCollection").
				Str("collection", collection.String()).
				Str("id", record.ID).
				Msg("skipping cached record that no longer decodes")
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *syncEngine) LastSyncTime(ctx context.Context) *time.Time {
	value, err := e.cache.GetMetadata(ctx, models.ItemsLastSyncKey)
	if err != nil {
		return nil
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		e.logger.Err(err).
			Str("func", "syncEngine.LastSyncTime").
			Str("value", value).
			Msg("unparseable last-sync marker")
		return nil
	}
	return &ts
}
