package gokeyence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DEFAULT_POLL_INTERVAL = 1 * time.Second
	DEFAULT_POLL_COUNT    = 1
)

// Monitor polls one register range and reports value changes and loss of
// connectivity. Both callbacks are edge-triggered and run on the monitor's
// own goroutine.
//
// Several monitors may share one Client; the client's lock keeps their
// exchanges apart on the wire.
type Monitor struct {
	plc      Reader
	address  string
	count    int
	interval time.Duration

	onChanged      func(Response)
	onDisconnected func(error)
	observer       ConnectionObserver
	logger         *zap.Logger

	life lifecycle
}

// MonitorOption configures a Monitor
type MonitorOption func(*Monitor)

// WithPollCount sets how many consecutive registers are read each poll. Default: 1.
func WithPollCount(count int) MonitorOption {
	return func(m *Monitor) {
		if count > 0 {
			m.count = count
		}
	}
}

// WithPollInterval sets the sleep between polls. Default: 1s.
func WithPollInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithChangeHandler sets the callback invoked with every new value,
// including the first successful read.
func WithChangeHandler(fn func(Response)) MonitorOption {
	return func(m *Monitor) {
		m.onChanged = fn
	}
}

// WithDisconnectHandler sets the callback invoked once per connectivity-loss
// episode with the error that started it.
func WithDisconnectHandler(fn func(error)) MonitorOption {
	return func(m *Monitor) {
		m.onDisconnected = fn
	}
}

// WithConnectionObserver attaches an observer (e.g. ConnectionWatchdog) to
// connectivity transitions.
func WithConnectionObserver(o ConnectionObserver) MonitorOption {
	return func(m *Monitor) {
		m.observer = o
	}
}

// WithMonitorLogger sets the logger. Default: no logging.
func WithMonitorLogger(logger *zap.Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMonitor creates an idle monitor for address. Call Start to begin polling.
func NewMonitor(plc Reader, address string, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		plc:      plc,
		address:  address,
		count:    DEFAULT_POLL_COUNT,
		interval: DEFAULT_POLL_INTERVAL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("monitor").With(zap.String("address", address), zap.Int("count", m.count))
	m.life.init()
	return m
}

// Start begins polling. It fails unless the monitor is idle.
func (m *Monitor) Start() error {
	return m.life.begin("monitor", m.run)
}

// Stop requests the polling loop to exit. An in-flight read is not
// interrupted; use Done to wait for the loop to finish.
func (m *Monitor) Stop() {
	m.life.end()
}

// Done is closed once the monitor has stopped
func (m *Monitor) Done() <-chan struct{} {
	return m.life.done
}

// State returns the lifecycle state
func (m *Monitor) State() LoopState {
	return m.life.current()
}

func (m *Monitor) run() {
	m.logger.Debug("polling started", zap.Duration("interval", m.interval))
	defer m.logger.Debug("polling stopped")

	// In-flight reads must not be cut short by Stop.
	ctx := context.Background()
	p := &monitorPoll{m: m}
	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	for {
		if m.life.stopping() {
			return
		}
		p.tick(ctx)

		timer.Reset(m.interval)
		select {
		case <-m.life.stop:
			return
		case <-timer.C:
		}
	}
}

// monitorPoll is the loop-local state of a running monitor
type monitorPoll struct {
	m         *Monitor
	last      Response
	observed  bool // false until the first successful read
	lost      bool // set on failure, cleared on success
	connected bool // last state reported to the observer
}

func (p *monitorPoll) tick(ctx context.Context) {
	m := p.m
	value, err := m.plc.Read(ctx, m.address, m.count)
	if err != nil {
		if p.lost {
			return
		}
		p.lost = true
		p.connected = false
		m.logger.Warn("disconnected", zap.Error(err))
		if m.observer != nil {
			m.observer.OnDisconnected(m.address, err)
		}
		if m.onDisconnected != nil {
			m.onDisconnected(err)
		}
		return
	}

	if !p.observed || !value.Equal(p.last) {
		m.logger.Debug("value changed", zap.Stringer("value", value))
		if m.onChanged != nil {
			m.onChanged(value)
		}
		p.last = value
		p.observed = true
	}

	if !p.connected {
		if p.lost {
			m.logger.Info("reconnected")
		}
		p.connected = true
		if m.observer != nil {
			m.observer.OnConnected(m.address)
		}
	}
	p.lost = false
}
