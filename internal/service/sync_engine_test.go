package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/mock"
	"github.com/ademidova/go-stock-keeper/internal/store"
	"github.com/ademidova/go-stock-keeper/models"
)

type engineMocks struct {
	cache    *mock.MockCacheRepository
	queue    *mock.MockQueueRepository
	remote   *mock.MockRemoteStore
	net      *mock.MockConnectivityMonitor
	notifier *mock.MockNotifier
}

func newTestEngine(t *testing.T) (SyncEngine, engineMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := engineMocks{
		cache:    mock.NewMockCacheRepository(ctrl),
		queue:    mock.NewMockQueueRepository(ctrl),
		remote:   mock.NewMockRemoteStore(ctrl),
		net:      mock.NewMockConnectivityMonitor(ctrl),
		notifier: mock.NewMockNotifier(ctrl),
	}

	engine := NewSyncEngine(m.cache, m.queue, m.remote, m.net, m.notifier, time.Second, logger.Nop())
	return engine, m
}

// allowRefresh lets a replay's trailing refresh pass run against empty
// server collections without cluttering a test's own expectations.
func allowRefresh(m engineMocks) {
	m.remote.EXPECT().FetchItems(gomock.Any()).Return(nil, nil).AnyTimes()
	m.remote.EXPECT().FetchCategories(gomock.Any()).Return(nil, nil).AnyTimes()
	m.remote.EXPECT().FetchRecentTransactions(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	m.cache.EXPECT().GetAll(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().SetMetadata(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func TestSyncPendingOperations_OfflineIsNoop(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(false)

	report, err := engine.SyncPendingOperations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Attempted())
}

func TestSyncPendingOperations_ReplaysInCreationOrder(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true).AnyTimes()
	allowRefresh(m)

	createData := json.RawMessage(`{"id":"w1","name":"Widget"}`)
	updateData := json.RawMessage(`{"id":"w1","name":"Widget","quantity":5}`)
	deleteData := json.RawMessage(`{"id":"c9"}`)

	m.queue.EXPECT().ListAll(gomock.Any()).Return([]models.PendingOperation{
		{ID: 1, Type: models.OperationCreate, Table: models.CollectionItems, Data: createData},
		{ID: 2, Type: models.OperationUpdate, Table: models.CollectionItems, Data: updateData},
		{ID: 3, Type: models.OperationDelete, Table: models.CollectionCategories, Data: deleteData},
	}, nil)

	gomock.InOrder(
		m.remote.EXPECT().Insert(gomock.Any(), models.CollectionItems, createData).Return(createData, nil),
		m.queue.EXPECT().Remove(gomock.Any(), int64(1)).Return(nil),
		m.remote.EXPECT().Update(gomock.Any(), models.CollectionItems, "w1", updateData).Return(updateData, nil),
		m.queue.EXPECT().Remove(gomock.Any(), int64(2)).Return(nil),
		m.remote.EXPECT().Delete(gomock.Any(), models.CollectionCategories, "c9").Return(nil),
		m.queue.EXPECT().Remove(gomock.Any(), int64(3)).Return(nil),
	)
	m.cache.EXPECT().Delete(gomock.Any(), models.CollectionCategories, "c9").Return(nil)

	m.notifier.EXPECT().Notify(gomock.Any()).Do(func(n models.Notification) {
		assert.Equal(t, models.NoticeInfo, n.Level)
		assert.Contains(t, n.Message, "3 of 3")
	})

	report, err := engine.SyncPendingOperations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, report.Succeeded)
	assert.Empty(t, report.Failed)
}

func TestSyncPendingOperations_PartialFailureContinues(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true).AnyTimes()
	allowRefresh(m)

	first := json.RawMessage(`{"id":"a"}`)
	second := json.RawMessage(`{"id":"b"}`)
	third := json.RawMessage(`{"id":"c"}`)

	m.queue.EXPECT().ListAll(gomock.Any()).Return([]models.PendingOperation{
		{ID: 10, Type: models.OperationCreate, Table: models.CollectionItems, Data: first},
		{ID: 11, Type: models.OperationCreate, Table: models.CollectionItems, Data: second},
		{ID: 12, Type: models.OperationCreate, Table: models.CollectionItems, Data: third},
	}, nil)

	remoteErr := errors.New("constraint violation")
	m.remote.EXPECT().Insert(gomock.Any(), models.CollectionItems, first).Return(first, nil)
	m.remote.EXPECT().Insert(gomock.Any(), models.CollectionItems, second).Return(nil, remoteErr)
	m.remote.EXPECT().Insert(gomock.Any(), models.CollectionItems, third).Return(third, nil)

	// Only the two successful operations are dequeued.
	m.queue.EXPECT().Remove(gomock.Any(), int64(10)).Return(nil)
	m.queue.EXPECT().Remove(gomock.Any(), int64(12)).Return(nil)

	m.notifier.EXPECT().Notify(gomock.Any()).Do(func(n models.Notification) {
		assert.Equal(t, models.NoticeWarning, n.Level)
		assert.Contains(t, n.Message, "2 of 3")
	})

	report, err := engine.SyncPendingOperations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 12}, report.Succeeded)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, int64(11), report.Failed[0].OperationID)
	assert.ErrorIs(t, report.Failed[0].Err, remoteErr)
}

func TestSyncPendingOperations_SingleFlight(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true).AnyTimes()
	allowRefresh(m)
	m.notifier.EXPECT().Notify(gomock.Any()).AnyTimes()

	entered := make(chan struct{})
	release := make(chan struct{})

	m.queue.EXPECT().ListAll(gomock.Any()).DoAndReturn(func(context.Context) ([]models.PendingOperation, error) {
		close(entered)
		<-release
		return nil, nil
	})

	done := make(chan models.ReplayReport, 1)
	go func() {
		report, _ := engine.SyncPendingOperations(context.Background())
		done <- report
	}()

	<-entered
	assert.True(t, engine.IsSyncing())

	// A second call while the first holds the guard is a no-op: ListAll is
	// expected exactly once.
	report, err := engine.SyncPendingOperations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Attempted())

	close(release)
	<-done
	assert.False(t, engine.IsSyncing())
}

func TestSyncPendingOperations_ListError(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true)
	listErr := errors.New("database is locked")
	m.queue.EXPECT().ListAll(gomock.Any()).Return(nil, listErr)

	_, err := engine.SyncPendingOperations(context.Background())
	require.ErrorIs(t, err, listErr)
	assert.False(t, engine.IsSyncing())
}

func TestSyncPendingOperations_UnknownTypeStaysQueued(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true).AnyTimes()
	allowRefresh(m)
	m.notifier.EXPECT().Notify(gomock.Any()).AnyTimes()

	m.queue.EXPECT().ListAll(gomock.Any()).Return([]models.PendingOperation{
		{ID: 1, Type: models.OperationType("merge"), Table: models.CollectionItems, Data: json.RawMessage(`{"id":"a"}`)},
	}, nil)

	report, err := engine.SyncPendingOperations(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0].Err, store.ErrInvalidOperation)
}

func TestRefreshFromServer_OfflineIsNoop(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(false)

	engine.RefreshFromServer(context.Background())
}

func TestRefreshFromServer_OverwritesCollections(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true)

	expiry := time.Now().Add(48 * time.Hour).UTC()
	items := []models.Item{{
		ID:       "w1",
		Name:     "Widget",
		Quantity: 7,
		Batches:  []models.Batch{{ID: "b1", ItemID: "w1", Quantity: 7, ExpiryDate: expiry}},
	}}
	categories := []models.Category{{ID: "c1", Name: "Hardware"}}
	transactions := []models.Transaction{{ID: "t1", ItemID: "w1", Type: models.TransactionIn, Quantity: 7}}

	m.remote.EXPECT().FetchItems(gomock.Any()).Return(items, nil)
	m.remote.EXPECT().FetchCategories(gomock.Any()).Return(categories, nil)
	m.remote.EXPECT().FetchRecentTransactions(gomock.Any(), 100).Return(transactions, nil)

	gomock.InOrder(
		m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionItems).Return(nil, nil),
		m.cache.EXPECT().Clear(gomock.Any(), models.CollectionItems).Return(nil),
		m.cache.EXPECT().Put(gomock.Any(), models.CollectionItems, "w1", gomock.Any(), true).Return(nil),
		m.cache.EXPECT().SetMetadata(gomock.Any(), "items_last_sync", gomock.Any()).Return(nil),
	)
	gomock.InOrder(
		m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionBatches).Return(nil, nil),
		m.cache.EXPECT().Clear(gomock.Any(), models.CollectionBatches).Return(nil),
		m.cache.EXPECT().Put(gomock.Any(), models.CollectionBatches, "b1", gomock.Any(), true).Return(nil),
		m.cache.EXPECT().SetMetadata(gomock.Any(), "batches_last_sync", gomock.Any()).Return(nil),
	)
	gomock.InOrder(
		m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionCategories).Return(nil, nil),
		m.cache.EXPECT().Clear(gomock.Any(), models.CollectionCategories).Return(nil),
		m.cache.EXPECT().Put(gomock.Any(), models.CollectionCategories, "c1", gomock.Any(), true).Return(nil),
		m.cache.EXPECT().SetMetadata(gomock.Any(), "categories_last_sync", gomock.Any()).Return(nil),
	)
	gomock.InOrder(
		m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionTransactions).Return(nil, nil),
		m.cache.EXPECT().Clear(gomock.Any(), models.CollectionTransactions).Return(nil),
		m.cache.EXPECT().Put(gomock.Any(), models.CollectionTransactions, "t1", gomock.Any(), true).Return(nil),
		m.cache.EXPECT().SetMetadata(gomock.Any(), "transactions_last_sync", gomock.Any()).Return(nil),
	)

	engine.RefreshFromServer(context.Background())
}

func TestRefreshFromServer_CollectionsFailIndependently(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true)

	// Items fetch fails: the item and batch caches are left untouched while
	// the other collections still refresh.
	m.remote.EXPECT().FetchItems(gomock.Any()).Return(nil, errors.New("gateway timeout"))
	m.remote.EXPECT().FetchCategories(gomock.Any()).Return([]models.Category{{ID: "c1", Name: "Hardware"}}, nil)
	m.remote.EXPECT().FetchRecentTransactions(gomock.Any(), 100).Return(nil, nil)

	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionCategories).Return(nil, nil)
	m.cache.EXPECT().Clear(gomock.Any(), models.CollectionCategories).Return(nil)
	m.cache.EXPECT().Put(gomock.Any(), models.CollectionCategories, "c1", gomock.Any(), true).Return(nil)
	m.cache.EXPECT().SetMetadata(gomock.Any(), "categories_last_sync", gomock.Any()).Return(nil)

	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionTransactions).Return(nil, nil)
	m.cache.EXPECT().Clear(gomock.Any(), models.CollectionTransactions).Return(nil)
	m.cache.EXPECT().SetMetadata(gomock.Any(), "transactions_last_sync", gomock.Any()).Return(nil)

	engine.RefreshFromServer(context.Background())
}

func TestSyncPendingOperations_FailedOpKeepsOptimisticRow(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true).AnyTimes()

	data := json.RawMessage(`{"id":"w1","name":"Widget"}`)
	m.queue.EXPECT().ListAll(gomock.Any()).Return([]models.PendingOperation{
		{ID: 1, Type: models.OperationCreate, Table: models.CollectionItems, Data: data},
	}, nil)
	m.remote.EXPECT().Insert(gomock.Any(), models.CollectionItems, data).Return(nil, errors.New("rejected"))

	// The server knows nothing about the offline-created item, yet the
	// trailing refresh restores its optimistic row instead of wiping it.
	m.remote.EXPECT().FetchItems(gomock.Any()).Return(nil, nil)
	m.remote.EXPECT().FetchCategories(gomock.Any()).Return(nil, nil)
	m.remote.EXPECT().FetchRecentTransactions(gomock.Any(), 100).Return(nil, nil)

	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionItems).Return([]models.CachedRecord{
		{ID: "w1", Data: data, Synced: false},
	}, nil)
	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionBatches).Return(nil, nil)
	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionCategories).Return(nil, nil)
	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionTransactions).Return(nil, nil)

	m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).Times(4)
	m.cache.EXPECT().Put(gomock.Any(), models.CollectionItems, "w1", data, false).Return(nil)
	m.cache.EXPECT().SetMetadata(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(4)

	m.notifier.EXPECT().Notify(gomock.Any()).Do(func(n models.Notification) {
		assert.Equal(t, models.NoticeWarning, n.Level)
	})

	report, err := engine.SyncPendingOperations(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Succeeded)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, int64(1), report.Failed[0].OperationID)
}

func TestSyncPendingOperations_SuccessRecachesServerRow(t *testing.T) {
	engine, m := newTestEngine(t)

	m.net.EXPECT().IsOnline().Return(true).AnyTimes()

	data := json.RawMessage(`{"id":"w1","name":"Widget"}`)
	serverRow := json.RawMessage(`{"id":"w1","name":"Widget","quantity":3}`)

	m.queue.EXPECT().ListAll(gomock.Any()).Return([]models.PendingOperation{
		{ID: 1, Type: models.OperationCreate, Table: models.CollectionItems, Data: data},
	}, nil)
	m.remote.EXPECT().Insert(gomock.Any(), models.CollectionItems, data).Return(serverRow, nil)

	// The server's version replaces the optimistic row as synced, so the
	// refresh no longer treats it as pending work.
	m.cache.EXPECT().Put(gomock.Any(), models.CollectionItems, "w1", serverRow, true).Return(nil)
	m.queue.EXPECT().Remove(gomock.Any(), int64(1)).Return(nil)

	allowRefresh(m)
	m.notifier.EXPECT().Notify(gomock.Any()).AnyTimes()

	report, err := engine.SyncPendingOperations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, report.Succeeded)
}

func TestGetOfflineData_EmptyCache(t *testing.T) {
	engine, m := newTestEngine(t)

	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionItems).Return(nil, nil)
	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionCategories).Return(nil, nil)
	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionTransactions).Return(nil, nil)

	data, err := engine.GetOfflineData(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, data.Items)
	assert.NotNil(t, data.Categories)
	assert.NotNil(t, data.Transactions)
	assert.Empty(t, data.Items)
}

func TestGetOfflineData_SkipsCorruptRecords(t *testing.T) {
	engine, m := newTestEngine(t)

	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionItems).Return([]models.CachedRecord{
		{ID: "w1", Data: json.RawMessage(`{"id":"w1","name":"Widget"}`)},
		{ID: "w2", Data: json.RawMessage(`{{not json`)},
	}, nil)
	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionCategories).Return(nil, nil)
	m.cache.EXPECT().GetAll(gomock.Any(), models.CollectionTransactions).Return(nil, nil)

	data, err := engine.GetOfflineData(context.Background())
	require.NoError(t, err)

	require.Len(t, data.Items, 1)
	assert.Equal(t, "Widget", data.Items[0].Name)
}

func TestLastSyncTime(t *testing.T) {
	engine, m := newTestEngine(t)

	m.cache.EXPECT().GetMetadata(gomock.Any(), models.ItemsLastSyncKey).Return("", store.ErrMetadataNotFound)
	assert.Nil(t, engine.LastSyncTime(context.Background()))

	stamp := time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC)
	m.cache.EXPECT().GetMetadata(gomock.Any(), models.ItemsLastSyncKey).Return(stamp.Format(time.RFC3339), nil)

	got := engine.LastSyncTime(context.Background())
	require.NotNil(t, got)
	assert.True(t, got.Equal(stamp))
}
