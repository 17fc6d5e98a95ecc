package gokeyence

import (
	"sync"
	"time"
)

// ConnectionEventType describes the type of connection event.
type ConnectionEventType string

const (
	ConnectionEventConnected    ConnectionEventType = "connected"
	ConnectionEventDisconnected ConnectionEventType = "disconnected"
)

// ConnectionObserver receives connectivity transitions detected by a Monitor.
// Calls happen on the monitor goroutine.
type ConnectionObserver interface {
	OnConnected(address string)
	OnDisconnected(address string, err error)
}

// ConnectionEvent is emitted whenever a monitor sees the controller come or go.
type ConnectionEvent struct {
	Time      time.Time
	Type      ConnectionEventType
	Address   string        // Register polled by the reporting monitor
	Err       error         // Set on disconnect
	Downtime  time.Duration // Outage length, set when the last down address recovers
	Connected bool          // True when no address is down after the event
}

// ConnectionStats contains snapshot metrics about connection health.
// Disconnects counts outages, not per-address edges.
type ConnectionStats struct {
	Connected         bool
	LastConnected     time.Time
	LastDisconnected  time.Time
	CurrentDowntime   time.Duration
	TotalDowntime     time.Duration
	Disconnects       int
	LastDisconnectErr error
	DownAddresses     int
}

// ConnectionWatchdog tracks controller uptime/downtime and emits events.
// Attach it to monitors with WithConnectionObserver; register it on a client
// with Use to keep it alongside the client's other plugins.
//
// Several monitors may share one watchdog. An outage starts when the first
// address goes down and ends when the last down address recovers, so it is
// counted once however many monitors saw it. Every edge is still emitted as
// an event. Hooks are non-blocking; events are dropped if the channel buffer
// is full.
type ConnectionWatchdog struct {
	events chan ConnectionEvent

	mu sync.RWMutex

	// guarded by mu
	down             map[string]bool
	connected        bool
	lastConnected    time.Time
	lastDisconnected time.Time
	downtimeStart    time.Time
	totalDowntime    time.Duration
	disconnects      int
	lastErr          error
}

// NewConnectionWatchdog creates a new watchdog.
// eventBuffer controls the channel buffer size for Events(); use 0 for the default of 16.
func NewConnectionWatchdog(eventBuffer int) *ConnectionWatchdog {
	if eventBuffer <= 0 {
		eventBuffer = 16
	}
	return &ConnectionWatchdog{
		events: make(chan ConnectionEvent, eventBuffer),
		down:   make(map[string]bool),
	}
}

// Name implements Plugin.
func (w *ConnectionWatchdog) Name() string { return "connection_watchdog" }

// Initialize implements Plugin. No-op.
func (w *ConnectionWatchdog) Initialize(*Client) error { return nil }

// OnConnected implements ConnectionObserver.
func (w *ConnectionWatchdog) OnConnected(address string) {
	now := time.Now()
	var downtime time.Duration

	w.mu.Lock()
	delete(w.down, address)
	connected := len(w.down) == 0
	if connected {
		if !w.downtimeStart.IsZero() {
			downtime = now.Sub(w.downtimeStart)
			w.totalDowntime += downtime
			w.downtimeStart = time.Time{}
		}
		w.connected = true
		w.lastConnected = now
	}
	w.mu.Unlock()

	w.emit(ConnectionEvent{
		Time:      now,
		Type:      ConnectionEventConnected,
		Address:   address,
		Downtime:  downtime,
		Connected: connected,
	})
}

// OnDisconnected implements ConnectionObserver.
func (w *ConnectionWatchdog) OnDisconnected(address string, err error) {
	now := time.Now()

	w.mu.Lock()
	if len(w.down) == 0 {
		w.downtimeStart = now
		w.disconnects++
	}
	w.down[address] = true
	w.connected = false
	w.lastDisconnected = now
	w.lastErr = err
	w.mu.Unlock()

	w.emit(ConnectionEvent{
		Time:      now,
		Type:      ConnectionEventDisconnected,
		Address:   address,
		Err:       err,
		Connected: false,
	})
}

// Events returns a read-only channel of connection events.
func (w *ConnectionWatchdog) Events() <-chan ConnectionEvent {
	return w.events
}

// Stats returns a snapshot of connection health metrics.
func (w *ConnectionWatchdog) Stats() ConnectionStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := ConnectionStats{
		Connected:         w.connected,
		LastConnected:     w.lastConnected,
		LastDisconnected:  w.lastDisconnected,
		TotalDowntime:     w.totalDowntime,
		Disconnects:       w.disconnects,
		LastDisconnectErr: w.lastErr,
		DownAddresses:     len(w.down),
	}
	if !w.connected && !w.downtimeStart.IsZero() {
		stats.CurrentDowntime = time.Since(w.downtimeStart)
	}
	return stats
}

func (w *ConnectionWatchdog) emit(evt ConnectionEvent) {
	select {
	case w.events <- evt:
	default:
		// Drop if buffer is full to avoid blocking the monitor.
	}
}

// Ensure ConnectionWatchdog satisfies the interfaces.
var _ ConnectionObserver = (*ConnectionWatchdog)(nil)
var _ Plugin = (*ConnectionWatchdog)(nil)
