// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package client implements the interactive client application runtime.
//
// It wires the local storages, the remote store adapter, the connectivity
// monitor, background workers and the terminal UI into a single process
// lifecycle.
package client

import (
	"context"

	"github.com/ademidova/go-stock-keeper/internal/config"
	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/internal/netmon"
	"github.com/ademidova/go-stock-keeper/internal/service"
	"github.com/ademidova/go-stock-keeper/internal/store"
	"github.com/ademidova/go-stock-keeper/internal/tui"
	"github.com/ademidova/go-stock-keeper/internal/workers"
)

type App struct {
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	services *service.ClientServices
	monitor  *netmon.Monitor
	ui       *tui.TUI
	logger   *logger.Logger
}

func NewApp(
	cfg *config.ClientConfig,
	storages *store.ClientStorages,
	services *service.ClientServices,
	monitor *netmon.Monitor,
	ui *tui.TUI,
	log *logger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		storages: storages,
		services: services,
		monitor:  monitor,
		ui:       ui,
		logger:   log,
	}
}

// Run starts the monitor, the connectivity reaction loop and the background
// workers, then blocks in the UI until the user quits.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.monitor.Start(ctx)
	defer a.monitor.Stop()

	go a.services.Status.Run(ctx)

	workers.NewWorkers(
		workers.NewPeriodicSyncWorker(ctx, a.services.Sync, a.cfg.Workers.SyncInterval),
		workers.NewPendingCountWorker(ctx, a.storages.Queue, a.cfg.Workers.PendingPollInterval, a.ui.PendingCounts(), a.logger),
	).Run()

	a.logger.Info().
		Str("func", "App.Run").
		Str("remote", a.cfg.Remote.BaseURL).
		Msg("client started")

	return a.ui.Run(ctx)
}
