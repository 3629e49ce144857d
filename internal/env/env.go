// Package env tracks device environment signals consumed by the realtime core:
// application foreground state and network reachability.
//
// The Monitor:
//   - Holds the current signal snapshot
//   - Pushes change events to subscribers (edge-triggered)
//   - Receives signals from platform hooks via setters
//
// The Prober derives network reachability by periodically dialing the sync
// endpoint, for hosts without a native reachability API.
package env

import (
	"sync"
)

// Snapshot is the current value of both environment signals.
type Snapshot struct {
	Foreground bool // Application is in the foreground
	NetworkUp  bool // Network is reachable
}

// Monitor holds environment signals and notifies subscribers of changes.
type Monitor struct {
	mu      sync.Mutex
	cur     Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewMonitor creates a Monitor that starts foregrounded with network up.
// Embedders with real platform signals push updates via the setters.
func NewMonitor() *Monitor {
	return &Monitor{
		cur:  Snapshot{Foreground: true, NetworkUp: true},
		subs: make(map[int]func(Snapshot)),
	}
}

// Current returns the latest snapshot.
func (m *Monitor) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// SetForeground updates the foreground signal.
func (m *Monitor) SetForeground(fg bool) {
	m.update(func(s *Snapshot) { s.Foreground = fg })
}

// SetNetworkUp updates the network reachability signal.
func (m *Monitor) SetNetworkUp(up bool) {
	m.update(func(s *Snapshot) { s.NetworkUp = up })
}

// Subscribe registers a callback invoked on every signal change.
// The returned function removes the subscription and is safe to call twice.
func (m *Monitor) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// update applies a mutation and notifies subscribers if the snapshot changed.
func (m *Monitor) update(mutate func(*Snapshot)) {
	m.mu.Lock()
	next := m.cur
	mutate(&next)
	if next == m.cur {
		m.mu.Unlock()
		return
	}
	m.cur = next
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}
