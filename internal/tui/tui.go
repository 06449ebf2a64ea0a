// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package tui renders the thin terminal status surface: the cached item
// list, the connectivity and sync indicators, the pending-change counter,
// and transient notifications. All business behaviour lives in the service
// layer; this package only projects it.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ademidova/go-stock-keeper/internal/service"
)

type TUI struct {
	services *service.ClientServices
	counts   chan int
}

func New(services *service.ClientServices) *TUI {
	return &TUI{
		services: services,
		counts:   make(chan int, 8),
	}
}

// PendingCounts returns the callback the pending-count worker reports
// through. Counts arriving while no program is running are buffered or
// dropped.
func (t *TUI) PendingCounts() func(count int) {
	return func(count int) {
		select {
		case t.counts <- count:
		default:
		}
	}
}

// Run blocks until the user quits or ctx is cancelled. Notifications from
// the service layer are pumped into the program as messages.
func (t *TUI) Run(ctx context.Context) error {
	model := newStatusModel(ctx, t.services.Status, t.services.Inventory)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		notifications := t.services.Status.Notifications()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-notifications:
				program.Send(notificationMsg(n))
			case count := <-t.counts:
				program.Send(pendingCountMsg(count))
			}
		}
	}()

	_, err := program.Run()
	return err
}
