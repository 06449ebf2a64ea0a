// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package netmon watches reachability of the remote backend and publishes
// connectivity transitions to subscribers.
//
// The monitor holds one of two states, online or offline, and emits an
// [Event] only when the state flips. The signal is authoritative for
// consumers (a flip to online is what triggers reconciliation), but it can
// be a false positive: every remote call still handles its own failure.
package netmon

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ademidova/go-stock-keeper/internal/logger"
)

// Event describes a single connectivity transition.
type Event struct {
	Online bool
	At     time.Time
}

// Probe reports whether the remote backend is currently reachable.
type Probe func(ctx context.Context) bool

// TCPProbe returns a Probe that dials address over TCP with the given
// timeout. Any successful connection counts as reachable.
func TCPProbe(address string, timeout time.Duration) Probe {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}

	return func(ctx context.Context) bool {
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// Monitor probes connectivity on an interval and fans transitions out to
// subscribers. The zero value is not usable; construct with NewMonitor.
type Monitor struct {
	probe    Probe
	interval time.Duration
	logger   *logger.Logger

	online atomic.Bool

	mu     sync.Mutex
	subs   []chan Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates a Monitor that evaluates probe every interval. The
// monitor starts in the offline state; the first successful probe after
// Start is a regular offline-to-online transition. If interval is zero or
// negative it defaults to 5 seconds.
func NewMonitor(probe Probe, interval time.Duration, log *logger.Logger) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Monitor{probe: probe, interval: interval, logger: log}
}

// IsOnline reports the last observed connectivity state.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// Subscribe registers a new listener. Events are delivered on a buffered
// channel; a subscriber that falls behind loses the oldest undelivered
// event rather than blocking the monitor.
func (m *Monitor) Subscribe() <-chan Event {
	ch := make(chan Event, 8)

	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()

	return ch
}

// Start stops any previous probe loop, runs one probe immediately, then
// keeps probing every interval until ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		m.check(loopCtx)

		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				m.check(loopCtx)
			}
		}
	}()
}

// Stop cancels the probe loop and blocks until it has exited. Safe to call
// when the monitor is not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Monitor) check(ctx context.Context) {
	online := m.probe(ctx)
	if !m.online.CompareAndSwap(!online, online) {
		return
	}

	m.logger.Info().
		Str("func", "Monitor.check").
		Bool("online", online).
		Msg("connectivity changed")

	m.publish(Event{Online: online, At: time.Now()})
}

func (m *Monitor) publish(ev Event) {
	m.mu.Lock()
	subs := make([]chan Event, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Drop the oldest queued event to make room for the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
