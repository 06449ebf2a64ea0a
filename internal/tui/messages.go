package tui

import (
	"github.com/ademidova/go-stock-keeper/models"
)

type statusMsg struct {
	status models.SyncStatus
	err    error
}

type itemsLoadedMsg struct {
	items []models.Item
	err   error
}

type syncDoneMsg struct {
	report models.ReplayReport
	err    error
}

type refreshDoneMsg struct{}

type notificationMsg models.Notification

type pendingCountMsg int

type clearToastMsg struct{}

type tickMsg struct{}
