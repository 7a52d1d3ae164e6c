// SPDX-License-Identifier: Apache-2.0

// Package connectivity observes the host-reported online/offline signal and
// fans it out to subscribers as edge-triggered callbacks. The monitor holds
// no network logic of its own: the host (or a probe owned by the host)
// feeds it via SetOnline.
package connectivity

import (
	"sync"

	"github.com/tripkeep/go-trip-keeper/internal/logger"
)

// Monitor tracks the current connectivity signal. Construct with
// [NewMonitor]; the zero value is not usable.
type Monitor struct {
	logger *logger.Logger

	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
}

// NewMonitor returns a Monitor starting in the given state. No callbacks
// fire for the initial state; only edges are reported.
func NewMonitor(initialOnline bool, logger *logger.Logger) *Monitor {
	return &Monitor{
		logger: logger,
		online: initialOnline,
		subs:   make(map[int]func(online bool)),
	}
}

// IsOnline returns the current connectivity signal.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a host-reported connectivity change. Duplicate signals
// (online while already online) are ignored; on a real edge every
// subscriber is invoked once, each on its own goroutine so a slow
// subscriber cannot stall the signal path.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	callbacks := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		callbacks = append(callbacks, fn)
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "Monitor.SetOnline").
		Bool("online", online).
		Msg("connectivity edge")

	for _, fn := range callbacks {
		go fn(online)
	}
}

// Subscribe registers an edge callback and returns a cancel function that
// unregisters it. Safe to call cancel more than once.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
