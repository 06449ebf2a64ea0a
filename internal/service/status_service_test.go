package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/mock"
	"github.com/ademidova/go-stock-keeper/internal/netmon"
	"github.com/ademidova/go-stock-keeper/models"
)

type statusMocks struct {
	engine *mock.MockSyncEngine
	queue  *mock.MockQueueRepository
	cache  *mock.MockCacheRepository
	net    *mock.MockConnectivityMonitor
	hub    *NotificationHub
}

func newTestStatus(t *testing.T) (StatusService, statusMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := statusMocks{
		engine: mock.NewMockSyncEngine(ctrl),
		queue:  mock.NewMockQueueRepository(ctrl),
		cache:  mock.NewMockCacheRepository(ctrl),
		net:    mock.NewMockConnectivityMonitor(ctrl),
		hub:    NewNotificationHub(),
	}

	svc := NewStatusService(m.engine, m.queue, m.cache, m.net, m.hub, logger.Nop())
	return svc, m
}

func awaitNotification(t *testing.T, stream <-chan models.Notification) models.Notification {
	t.Helper()

	select {
	case n := <-stream:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a notification")
		return models.Notification{}
	}
}

func TestStatus_Projection(t *testing.T) {
	svc, m := newTestStatus(t)

	lastSync := time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)
	m.net.EXPECT().IsOnline().Return(true)
	m.engine.EXPECT().IsSyncing().Return(false)
	m.engine.EXPECT().LastSyncTime(gomock.Any()).Return(&lastSync)
	m.queue.EXPECT().Count(gomock.Any()).Return(4, nil)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)

	assert.True(t, status.IsOnline)
	assert.False(t, status.IsSyncing)
	assert.Equal(t, 4, status.PendingCount)
	require.NotNil(t, status.LastSyncTime)
	assert.True(t, status.LastSyncTime.Equal(lastSync))
}

func TestStatus_CountError(t *testing.T) {
	svc, m := newTestStatus(t)

	countErr := errors.New("database is locked")
	m.queue.EXPECT().Count(gomock.Any()).Return(0, countErr)

	_, err := svc.Status(context.Background())
	require.ErrorIs(t, err, countErr)
}

func TestRun_OnlineTransitionTriggersSync(t *testing.T) {
	svc, m := newTestStatus(t)

	events := make(chan netmon.Event, 1)
	m.net.EXPECT().Subscribe().Return((<-chan netmon.Event)(events))

	synced := make(chan struct{})
	m.engine.EXPECT().SyncPendingOperations(gomock.Any()).DoAndReturn(func(context.Context) (models.ReplayReport, error) {
		close(synced)
		return models.ReplayReport{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	events <- netmon.Event{Online: true, At: time.Now()}

	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatal("replay was not triggered by the online transition")
	}

	n := awaitNotification(t, svc.Notifications())
	assert.Equal(t, models.NoticeInfo, n.Level)
}

func TestRun_OfflineTransitionWarnsOnly(t *testing.T) {
	svc, m := newTestStatus(t)

	events := make(chan netmon.Event, 1)
	m.net.EXPECT().Subscribe().Return((<-chan netmon.Event)(events))
	m.cache.EXPECT().Count(gomock.Any(), models.CollectionItems).Return(12, nil)

	// No SyncPendingOperations expectation: going offline must not sync.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	events <- netmon.Event{Online: false, At: time.Now()}

	n := awaitNotification(t, svc.Notifications())
	assert.Equal(t, models.NoticeWarning, n.Level)
	assert.Contains(t, n.Message, "changes will be queued locally")
}

func TestRun_OfflineWithEmptyCache(t *testing.T) {
	svc, m := newTestStatus(t)

	events := make(chan netmon.Event, 1)
	m.net.EXPECT().Subscribe().Return((<-chan netmon.Event)(events))
	m.cache.EXPECT().Count(gomock.Any(), models.CollectionItems).Return(0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	events <- netmon.Event{Online: false, At: time.Now()}

	n := awaitNotification(t, svc.Notifications())
	assert.Equal(t, models.NoticeWarning, n.Level)
	assert.Contains(t, n.Message, "no cached data")
}

func TestRun_SyncFailureEmitsError(t *testing.T) {
	svc, m := newTestStatus(t)

	events := make(chan netmon.Event, 1)
	m.net.EXPECT().Subscribe().Return((<-chan netmon.Event)(events))
	m.engine.EXPECT().
		SyncPendingOperations(gomock.Any()).
		Return(models.ReplayReport{}, errors.New("queue unreadable"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	events <- netmon.Event{Online: true, At: time.Now()}

	first := awaitNotification(t, svc.Notifications())
	assert.Equal(t, models.NoticeInfo, first.Level)

	second := awaitNotification(t, svc.Notifications())
	assert.Equal(t, models.NoticeError, second.Level)
}

func TestSyncAndRefresh_Passthrough(t *testing.T) {
	svc, m := newTestStatus(t)

	m.engine.EXPECT().
		SyncPendingOperations(gomock.Any()).
		Return(models.ReplayReport{Succeeded: []int64{1}}, nil)
	m.engine.EXPECT().RefreshFromServer(gomock.Any())

	report, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, report.Succeeded)

	svc.Refresh(context.Background())
}

func TestNotificationHub_DropsOldestWhenFull(t *testing.T) {
	hub := NewNotificationHub()

	for i := 0; i < 20; i++ {
		hub.Notify(models.Notification{Message: "m", At: time.Now()})
	}

	// The hub never blocks and keeps at most its buffer worth of entries.
	count := 0
	for {
		select {
		case <-hub.Stream():
			count++
			continue
		default:
		}
		break
	}
	assert.LessOrEqual(t, count, 16)
	assert.Greater(t, count, 0)
}
