package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/models"
)

type queueRepository struct {
	*DB
	logger  *logger.Logger
	changes chan struct{}
}

func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:      db,
		logger:  logger,
		changes: make(chan struct{}, 1),
	}
}

func (q *queueRepository) Enqueue(ctx context.Context, opType models.OperationType, collection models.Collection, payload json.RawMessage) (int64, error) {
	log := logger.FromContext(ctx)

	if !opType.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperation, opType)
	}
	if !collection.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	result, err := q.DB.ExecContext(ctx, enqueueOperation,
		string(opType),
		collection.String(),
		string(payload),
		time.Now().UTC(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("type", string(opType)).
			Str("collection", collection.String()).
			Msg("failed to append pending operation")
		return 0, fmt.Errorf("failed to enqueue %s on %s: %w", opType, collection, err)
	}

	operationID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read assigned operation id: %w", err)
	}

	q.notify()
	return operationID, nil
}

func (q *queueRepository) ListAll(ctx context.Context) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, listAllOperations)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.ListAll").
			Msg("failed to query pending operations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var operations []models.PendingOperation

	for rows.Next() {
		var op models.PendingOperation
		var opType, collection, data string

		if scanErr := rows.Scan(&op.ID, &opType, &collection, &data, &op.CreatedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "queueRepository.ListAll").
				Msg("failed to scan pending operation row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		op.Type = models.OperationType(opType)
		op.Table = models.Collection(collection)
		op.Data = json.RawMessage(data)
		operations = append(operations, op)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "queueRepository.ListAll").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating pending operation rows: %w", rowsErr)
	}

	return operations, nil
}

func (q *queueRepository) Remove(ctx context.Context, operationID int64) error {
	log := logger.FromContext(ctx)

	// deleting a missing id affects zero rows and is not an error
	if _, err := q.DB.ExecContext(ctx, removeOperation, operationID); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Remove").
			Int64("operation_id", operationID).
			Msg("failed to delete pending operation")
		return fmt.Errorf("failed to remove pending operation (id=%d): %w", operationID, err)
	}

	q.notify()
	return nil
}

func (q *queueRepository) Count(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := q.DB.QueryRowContext(ctx, countOperations).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Count").
			Msg("failed to count pending operations")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (q *queueRepository) Changes() <-chan struct{} {
	return q.changes
}

// notify signals queue consumers without blocking; a dropped signal is fine
// because consumers re-read Count on every wake-up.
func (q *queueRepository) notify() {
	select {
	case q.changes <- struct{}{}:
	default:
	}
}
