// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ademidova/go-stock-keeper/internal/service"
	"github.com/ademidova/go-stock-keeper/models"
)

const statusPollInterval = 2 * time.Second

type statusModel struct {
	ctx       context.Context
	status    service.StatusService
	inventory service.InventoryService

	syncStatus models.SyncStatus
	items      []models.Item
	cursor     int
	lowOnly    bool

	spin  spinner.Model
	toast string
	err   error
}

func newStatusModel(ctx context.Context, status service.StatusService, inventory service.InventoryService) statusModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return statusModel{
		ctx:       ctx,
		status:    status,
		inventory: inventory,
		spin:      sp,
	}
}

func (m statusModel) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.loadItemsCmd(), m.spin.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(statusPollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m statusModel) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.status.Status(m.ctx)
		return statusMsg{status: status, err: err}
	}
}

func (m statusModel) loadItemsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.inventory.ListItems(m.ctx)
		return itemsLoadedMsg{items: items, err: err}
	}
}

func (m statusModel) syncCmd() tea.Cmd {
	return func() tea.Msg {
		report, err := m.status.Sync(m.ctx)
		return syncDoneMsg{report: report, err: err}
	}
}

func (m statusModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		m.status.Refresh(m.ctx)
		return refreshDoneMsg{}
	}
}

func clearToastCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.down):
			if m.cursor < len(m.visibleItems())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.sync):
			return m, m.syncCmd()
		case key.Matches(msg, keys.refresh):
			return m, m.refreshCmd()
		case key.Matches(msg, keys.lowOnly):
			m.lowOnly = !m.lowOnly
			m.cursor = 0
		}

	case tickMsg:
		return m, tea.Batch(m.loadStatusCmd(), m.loadItemsCmd(), tickCmd())

	case statusMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.syncStatus = msg.status

	case itemsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.items = msg.items
		if m.cursor >= len(m.visibleItems()) {
			m.cursor = 0
		}

	case syncDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, m.loadStatusCmd()
		}
		return m, tea.Batch(m.loadStatusCmd(), m.loadItemsCmd())

	case refreshDoneMsg:
		return m, tea.Batch(m.loadStatusCmd(), m.loadItemsCmd())

	case notificationMsg:
		m.toast = msg.Message
		return m, clearToastCmd()

	case pendingCountMsg:
		m.syncStatus.PendingCount = int(msg)

	case clearToastMsg:
		m.toast = ""

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m statusModel) visibleItems() []models.Item {
	if !m.lowOnly {
		return m.items
	}

	low := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		if item.MinQuantity > 0 && item.Quantity <= item.MinQuantity {
			low = append(low, item)
		}
	}
	return low
}

func (m statusModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Stock Keeper"))
	b.WriteString("  ")
	b.WriteString(m.connectivityView())
	b.WriteString("\n")
	b.WriteString(m.syncLineView())
	b.WriteString("\n\n")
	b.WriteString(m.itemsView())
	b.WriteString("\n")

	if m.toast != "" {
		b.WriteString(toastStyle.Render(m.toast))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(lowStockStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("s sync · r refresh · l low stock · j/k move · q quit"))

	return appStyle.Render(b.String())
}

func (m statusModel) connectivityView() string {
	if m.syncStatus.IsOnline {
		return onlineStyle.Render("● online")
	}
	return offlineStyle.Render("○ offline")
}

func (m statusModel) syncLineView() string {
	parts := make([]string, 0, 3)

	if m.syncStatus.IsSyncing {
		parts = append(parts, m.spin.View()+" syncing")
	}
	if m.syncStatus.PendingCount > 0 {
		parts = append(parts, pendingStyle.Render(fmt.Sprintf("%d pending", m.syncStatus.PendingCount)))
	}
	parts = append(parts, helpStyle.Render("synced "+relativeTime(m.syncStatus.LastSyncTime)))

	return strings.Join(parts, "  ")
}

func (m statusModel) itemsView() string {
	items := m.visibleItems()
	if len(items) == 0 {
		if m.lowOnly {
			return helpStyle.Render("no low-stock items")
		}
		return helpStyle.Render("no items cached yet, press r to refresh")
	}

	var b strings.Builder
	for i, item := range items {
		line := fmt.Sprintf("%-30s %6g %s", truncate(item.Name, 30), item.Quantity, item.Unit)
		if item.MinQuantity > 0 && item.Quantity <= item.MinQuantity {
			line += lowStockStyle.Render("  low")
		}
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// relativeTime renders a last-sync timestamp the way a status bar needs it.
func relativeTime(t *time.Time) string {
	if t == nil {
		return "never"
	}

	d := time.Since(*t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
