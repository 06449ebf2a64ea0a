// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ademidova/go-stock-keeper/internal/adapter"
	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/store"
	"github.com/ademidova/go-stock-keeper/models"
)

type inventoryService struct {
	cache  store.CacheRepository
	queue  store.QueueRepository
	remote adapter.RemoteStore
	net    ConnectivityMonitor
	logger *logger.Logger

	requestTimeout time.Duration
}

// NewInventoryService builds the write/read path for warehouse entities.
// While online, writes go straight to the remote store and the returned row
// lands in the cache as synced. While offline, writes are queued for replay
// and applied to the cache optimistically as unsynced.
func NewInventoryService(
	cache store.CacheRepository,
	queue store.QueueRepository,
	remote adapter.RemoteStore,
	net ConnectivityMonitor,
	requestTimeout time.Duration,
	log *logger.Logger,
) InventoryService {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &inventoryService{
		cache:          cache,
		queue:          queue,
		remote:         remote,
		net:            net,
		logger:         log,
		requestTimeout: requestTimeout,
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UpdatedAt = time.Now().UTC()

	row, err := s.create(ctx, models.CollectionItems, item.ID, item)
	if err != nil {
		return models.Item{}, err
	}
	return decodeRow[models.Item](row)
}

func (s *inventoryService) UpdateItem(ctx context.Context, item models.Item) (models.Item, error) {
	if item.ID == "" {
		return models.Item{}, ErrMissingID
	}
	item.UpdatedAt = time.Now().UTC()

	row, err := s.update(ctx, models.CollectionItems, item.ID, item)
	if err != nil {
		return models.Item{}, err
	}
	return decodeRow[models.Item](row)
}

func (s *inventoryService) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return s.delete(ctx, models.CollectionItems, id)
}

func (s *inventoryService) CreateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	row, err := s.create(ctx, models.CollectionCategories, category.ID, category)
	if err != nil {
		return models.Category{}, err
	}
	return decodeRow[models.Category](row)
}

func (s *inventoryService) RecordTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	switch tx.Type {
	case models.TransactionIn, models.TransactionOut, models.TransactionAdjust:
	default:
		return models.Transaction{}, fmt.Errorf("%w: %q", ErrUnknownTransactionType, tx.Type)
	}
	if tx.ItemID == "" {
		return models.Transaction{}, ErrMissingID
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now().UTC()

	row, err := s.create(ctx, models.CollectionTransactions, tx.ID, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	return decodeRow[models.Transaction](row)
}

func (s *inventoryService) ListItems(ctx context.Context) ([]models.Item, error) {
	return decodeCollection[models.Item](ctx, s.cache, s.logger, models.CollectionItems)
}

func (s *inventoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return decodeCollection[models.Category](ctx, s.cache, s.logger, models.CollectionCategories)
}

func (s *inventoryService) ListRecentTransactions(ctx context.Context) ([]models.Transaction, error) {
	return decodeCollection[models.Transaction](ctx, s.cache, s.logger, models.CollectionTransactions)
}

func (s *inventoryService) LowStockItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]models.Item, 0)
	for _, item := range items {
		if item.MinQuantity > 0 && item.Quantity <= item.MinQuantity {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *inventoryService) ExpiringBatches(ctx context.Context, within time.Duration) ([]models.Batch, error) {
	batches, err := decodeCollection[models.Batch](ctx, s.cache, s.logger, models.CollectionBatches)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(within)
	expiring := make([]models.Batch, 0)
	for _, batch := range batches {
		if !batch.ExpiryDate.IsZero() && batch.ExpiryDate.Before(deadline) {
			expiring = append(expiring, batch)
		}
	}
	return expiring, nil
}

// create routes one insert either to the remote store (online) or into the
// pending operation log (offline) and keeps the cache in step either way.
func (s *inventoryService) create(ctx context.Context, collection models.Collection, id string, v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s row: %w", collection, err)
	}

	if s.net.IsOnline() {
		callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		row, insertErr := s.remote.Insert(callCtx, collection, data)
		if insertErr != nil {
			return nil, fmt.Errorf("remote insert into %s: %w", collection, insertErr)
		}
		s.cachePut(ctx, collection, id, row, true)
		return row, nil
	}

	if _, err = s.queue.Enqueue(ctx, models.OperationCreate, collection, data); err != nil {
		return nil, fmt.Errorf("queue offline insert into %s: %w", collection, err)
	}
	s.cachePut(ctx, collection, id, data, false)
	return data, nil
}

func (s *inventoryService) update(ctx context.Context, collection models.Collection, id string, v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s row: %w", collection, err)
	}

	if s.net.IsOnline() {
		callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		row, updateErr := s.remote.Update(callCtx, collection, id, data)
		if updateErr != nil {
			return nil, fmt.Errorf("remote update of %s/%s: %w", collection, id, updateErr)
		}
		s.cachePut(ctx, collection, id, row, true)
		return row, nil
	}

	if _, err = s.queue.Enqueue(ctx, models.OperationUpdate, collection, data); err != nil {
		return nil, fmt.Errorf("queue offline update of %s/%s: %w", collection, id, err)
	}
	s.cachePut(ctx, collection, id, data, false)
	return data, nil
}

func (s *inventoryService) delete(ctx context.Context, collection models.Collection, id string) error {
	if s.net.IsOnline() {
		callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		if err := s.remote.Delete(callCtx, collection, id); err != nil {
			return fmt.Errorf("remote delete of %s/%s: %w", collection, id, err)
		}
		s.cacheDelete(ctx, collection, id)
		return nil
	}

	payload, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return fmt.Errorf("encode delete payload: %w", err)
	}
	if _, err = s.queue.Enqueue(ctx, models.OperationDelete, collection, payload); err != nil {
		return fmt.Errorf("queue offline delete of %s/%s: %w", collection, id, err)
	}
	s.cacheDelete(ctx, collection, id)
	return nil
}

// cachePut keeps the cache best-effort: a failing cache write is logged, but
// the mutation itself (already accepted remotely or queued durably) stands.
func (s *inventoryService) cachePut(ctx context.Context, collection models.Collection, id string, data json.RawMessage, synced bool) {
	if err := s.cache.Put(ctx, collection, id, data, synced); err != nil {
		s.logger.Err(err).
			Str("func", "inventoryService.cachePut").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to cache written row")
	}
}

func (s *inventoryService) cacheDelete(ctx context.Context, collection models.Collection, id string) {
	if err := s.cache.Delete(ctx, collection, id); err != nil {
		s.logger.Err(err).
			Str("func", "inventoryService.cacheDelete").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to drop deleted row from cache")
	}
}

func decodeRow[T any](row json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(row, &v); err != nil {
		return v, fmt.Errorf("decode row: %w", err)
	}
	return v, nil
}
