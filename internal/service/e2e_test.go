package service

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademidova/go-stock-keeper/internal/adapter"
	"github.com/ademidova/go-stock-keeper/internal/config"
	"github.com/ademidova/go-stock-keeper/internal/devserver"
	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/netmon"
	"github.com/ademidova/go-stock-keeper/internal/store"
	"github.com/ademidova/go-stock-keeper/models"
)

// toggleMonitor is a hand-driven connectivity source for end-to-end tests.
type toggleMonitor struct {
	online atomic.Bool
}

func (m *toggleMonitor) IsOnline() bool { return m.online.Load() }

func (m *toggleMonitor) Subscribe() <-chan netmon.Event {
	return make(chan netmon.Event)
}

type e2eEnv struct {
	services *ClientServices
	storages *store.ClientStorages
	monitor  *toggleMonitor
	server   *devserver.Server
}

// newE2EEnv runs the full client stack against the in-memory dev backend:
// real SQLite storages, the production HTTP adapter, and the sync engine.
func newE2EEnv(t *testing.T) e2eEnv {
	t.Helper()

	server := devserver.New(logger.Nop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	remote := adapter.NewHTTPRemoteStore(adapter.HTTPClientConfig{BaseURL: ts.URL, Timeout: 2 * time.Second})

	storages, err := store.NewClientStorages(config.ClientStorage{
		DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "client.db")},
	}, logger.Nop())
	require.NoError(t, err)

	monitor := &toggleMonitor{}
	services := NewClientServices(storages, remote, monitor, 2*time.Second, logger.Nop())

	return e2eEnv{services: services, storages: storages, monitor: monitor, server: server}
}

func TestEndToEnd_OfflineWritesReplayOnReconnect(t *testing.T) {
	env := newE2EEnv(t)
	ctx := context.Background()

	// Offline: a created item and a recorded movement land in the queue and
	// in the cache, not on the server.
	item, err := env.services.Inventory.CreateItem(ctx, models.Item{Name: "Widget", Quantity: 10, MinQuantity: 2, Unit: "pcs"})
	require.NoError(t, err)

	_, err = env.services.Inventory.RecordTransaction(ctx, models.Transaction{
		ItemID:   item.ID,
		Type:     models.TransactionOut,
		Quantity: 3,
	})
	require.NoError(t, err)

	pending, err := env.storages.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	offline, err := env.services.Sync.GetOfflineData(ctx)
	require.NoError(t, err)
	require.Len(t, offline.Items, 1)
	assert.Equal(t, "Widget", offline.Items[0].Name)

	// Reconnect and replay.
	env.monitor.online.Store(true)
	report, err := env.services.Sync.SyncPendingOperations(ctx)
	require.NoError(t, err)

	assert.Len(t, report.Succeeded, 2)
	assert.Empty(t, report.Failed)

	pending, err = env.storages.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	// The trailing refresh rewrote the cache from the server as synced.
	records, err := env.storages.Cache.GetAll(ctx, models.CollectionItems)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Synced)

	status, err := env.services.Status.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.PendingCount)
	require.NotNil(t, status.LastSyncTime)
}

func TestEndToEnd_PartialFailureKeepsOnlyFailedOp(t *testing.T) {
	env := newE2EEnv(t)
	ctx := context.Background()

	// Three queued operations; the middle one targets a row the server has
	// never seen, so its patch fails with 404.
	_, err := env.services.Inventory.CreateItem(ctx, models.Item{Name: "Widget"})
	require.NoError(t, err)

	_, err = env.storages.Queue.Enqueue(ctx, models.OperationUpdate, models.CollectionItems,
		json.RawMessage(`{"id":"ghost","name":"Phantom"}`))
	require.NoError(t, err)

	_, err = env.services.Inventory.CreateItem(ctx, models.Item{Name: "Gadget"})
	require.NoError(t, err)

	env.monitor.online.Store(true)
	report, err := env.services.Sync.SyncPendingOperations(ctx)
	require.NoError(t, err)

	assert.Len(t, report.Succeeded, 2)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0].Err, adapter.ErrNotFound)

	// Exactly the failed operation remains queued.
	ops, err := env.storages.Queue.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, models.OperationUpdate, ops[0].Type)

	status, err := env.services.Status.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.PendingCount)

	// Both successful creates made it to the server.
	items, err := env.services.Inventory.ListItems(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.ElementsMatch(t, []string{"Widget", "Gadget"}, names)
}
