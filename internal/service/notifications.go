package service

import "github.com/ademidova/go-stock-keeper/models"

// NotificationHub is a small fan-in buffer between notification producers
// (sync engine, status service) and the single UI consumer. Sends never
// block: when the buffer is full the oldest queued notification is dropped
// in favour of the newest.
type NotificationHub struct {
	ch chan models.Notification
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{ch: make(chan models.Notification, 16)}
}

// Notify implements [Notifier].
func (h *NotificationHub) Notify(n models.Notification) {
	select {
	case h.ch <- n:
		return
	default:
	}

	select {
	case <-h.ch:
	default:
	}
	select {
	case h.ch <- n:
	default:
	}
}

// Stream returns the consumer side of the hub. The channel is never closed.
func (h *NotificationHub) Stream() <-chan models.Notification {
	return h.ch
}
