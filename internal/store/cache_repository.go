package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/models"
)

type cacheRepository struct {
	*DB
	logger *logger.Logger
}

func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		DB:     db,
		logger: logger,
	}
}

// cacheTable maps a collection to its backing table. Every collection shares
// the same schema; only the table name differs.
func cacheTable(collection models.Collection) (string, error) {
	if !collection.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return "cache_" + collection.String(), nil
}

func (c *cacheRepository) Put(ctx context.Context, collection models.Collection, id string, data json.RawMessage, synced bool) error {
	log := logger.FromContext(ctx)

	table, err := cacheTable(collection)
	if err != nil {
		return err
	}

	query, args, err := sq.Insert(table).
		Columns("id", "data", "synced", "updated_at").
		Values(id, string(data), synced, time.Now().UTC()).
		Suffix("ON CONFLICT(id) DO UPDATE SET data = excluded.data, synced = excluded.synced, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = c.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Put").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to execute upsert for cached record")
		return fmt.Errorf("failed to cache record (collection=%s, id=%s): %w", collection, id, err)
	}

	return nil
}

func (c *cacheRepository) GetAll(ctx context.Context, collection models.Collection) ([]models.CachedRecord, error) {
	log := logger.FromContext(ctx)

	table, err := cacheTable(collection)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Select("id", "data", "synced", "updated_at").
		From(table).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.GetAll").
			Str("collection", collection.String()).
			Msg("failed to execute query for cached records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.CachedRecord

	for rows.Next() {
		var record models.CachedRecord
		var data string

		if scanErr := rows.Scan(&record.ID, &data, &record.Synced, &record.UpdatedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "cacheRepository.GetAll").
				Str("collection", collection.String()).
				Msg("failed to scan cached record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		record.Data = json.RawMessage(data)
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "cacheRepository.GetAll").
			Str("collection", collection.String()).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating cached record rows: %w", rowsErr)
	}

	return records, nil
}

func (c *cacheRepository) Delete(ctx context.Context, collection models.Collection, id string) error {
	log := logger.FromContext(ctx)

	table, err := cacheTable(collection)
	if err != nil {
		return err
	}

	query, args, err := sq.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = c.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Delete").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to delete cached record")
		return fmt.Errorf("failed to delete cached record (collection=%s, id=%s): %w", collection, id, err)
	}

	return nil
}

func (c *cacheRepository) Clear(ctx context.Context, collection models.Collection) error {
	log := logger.FromContext(ctx)

	table, err := cacheTable(collection)
	if err != nil {
		return err
	}

	query, args, err := sq.Delete(table).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = c.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Clear").
			Str("collection", collection.String()).
			Msg("failed to clear cache collection")
		return fmt.Errorf("failed to clear cache (collection=%s): %w", collection, err)
	}

	return nil
}

func (c *cacheRepository) Count(ctx context.Context, collection models.Collection) (int, error) {
	log := logger.FromContext(ctx)

	table, err := cacheTable(collection)
	if err != nil {
		return 0, err
	}

	query, args, err := sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err = c.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Count").
			Str("collection", collection.String()).
			Msg("failed to count cached records")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (c *cacheRepository) SetMetadata(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert("sync_metadata").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = c.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.SetMetadata").
			Str("key", key).
			Msg("failed to upsert sync metadata")
		return fmt.Errorf("failed to set sync metadata (key=%s): %w", key, err)
	}

	return nil
}

func (c *cacheRepository) GetMetadata(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("value").
		From("sync_metadata").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value string
	err = c.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMetadataNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.GetMetadata").
			Str("key", key).
			Msg("failed to query sync metadata")
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return value, nil
}
