package service

import (
	"time"

	"github.com/ademidova/go-stock-keeper/internal/adapter"
	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/store"
)

// ClientServices aggregates the client's business layer.
type ClientServices struct {
	Sync      SyncEngine
	Inventory InventoryService
	Status    StatusService
	Hub       *NotificationHub
}

// NewClientServices wires the sync engine, inventory service and status
// surface over the shared storages, remote adapter and connectivity monitor.
func NewClientServices(
	storages *store.ClientStorages,
	remote adapter.RemoteStore,
	net ConnectivityMonitor,
	requestTimeout time.Duration,
	log *logger.Logger,
) *ClientServices {
	hub := NewNotificationHub()
	engine := NewSyncEngine(storages.Cache, storages.Queue, remote, net, hub, requestTimeout, log)
	inventory := NewInventoryService(storages.Cache, storages.Queue, remote, net, requestTimeout, log)
	status := NewStatusService(engine, storages.Queue, storages.Cache, net, hub, log)

	return &ClientServices{
		Sync:      engine,
		Inventory: inventory,
		Status:    status,
		Hub:       hub,
	}
}
