package store

import (
	"context"
	"fmt"

	"github.com/ademidova/go-stock-keeper/internal/config"
	"github.com/ademidova/go-stock-keeper/internal/logger"
)

// ClientStorages groups all client-side storage repositories into a single
// value that can be passed around the service layer.
type ClientStorages struct {
	// Cache is the SQLite-backed local entity cache (items, categories,
	// batches, transactions) plus the sync metadata table.
	Cache CacheRepository

	// Queue is the append-only pending operation log replayed against the
	// remote store when connectivity returns.
	Queue QueueRepository
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [ClientStorages] value wired to fresh cache
//     and queue repositories.
//
// Returns an error if the database connection cannot be established or if
// migration fails. Callers should treat that as "no offline capability
// available" rather than a fatal application state.
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Cache: NewCacheRepository(db, logger),
		Queue: NewQueueRepository(db, logger),
	}, nil
}
