package gokeyence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DEFAULT_BEAT_INTERVAL = 1 * time.Second

// Heartbeat writes an alternating 1/0 to one register at a fixed cadence so
// the controller can tell the supervisor is alive. Failed writes are reported
// and the loop keeps beating.
type Heartbeat struct {
	plc      Writer
	address  string
	interval time.Duration

	onFailed func(error)
	logger   *zap.Logger

	life lifecycle
}

// HeartbeatOption configures a Heartbeat
type HeartbeatOption func(*Heartbeat)

// WithBeatInterval sets the time between beats. Default: 1s.
func WithBeatInterval(d time.Duration) HeartbeatOption {
	return func(h *Heartbeat) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithFailureHandler sets the callback invoked on every failed beat.
// A write the controller did not acknowledge is reported as NotAcknowledgedError.
func WithFailureHandler(fn func(error)) HeartbeatOption {
	return func(h *Heartbeat) {
		h.onFailed = fn
	}
}

// WithHeartbeatLogger sets the logger. Default: no logging.
func WithHeartbeatLogger(logger *zap.Logger) HeartbeatOption {
	return func(h *Heartbeat) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHeartbeat creates an idle heartbeat writing to address.
// The beat is a single-register integer write, so plc should use the
// fixed-width scheme.
func NewHeartbeat(plc Writer, address string, opts ...HeartbeatOption) *Heartbeat {
	h := &Heartbeat{
		plc:      plc,
		address:  address,
		interval: DEFAULT_BEAT_INTERVAL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("heartbeat").With(zap.String("address", address))
	h.life.init()
	return h
}

// Start begins beating. It fails unless the heartbeat is idle.
func (h *Heartbeat) Start() error {
	return h.life.begin("heartbeat", h.run)
}

// Stop requests the loop to exit after the current beat
func (h *Heartbeat) Stop() {
	h.life.end()
}

// Done is closed once the heartbeat has stopped
func (h *Heartbeat) Done() <-chan struct{} {
	return h.life.done
}

// State returns the lifecycle state
func (h *Heartbeat) State() LoopState {
	return h.life.current()
}

func (h *Heartbeat) run() {
	h.logger.Debug("heartbeat started", zap.Duration("interval", h.interval))
	defer h.logger.Debug("heartbeat stopped")

	ctx := context.Background()
	b := &beater{h: h}
	timer := time.NewTimer(h.interval)
	defer timer.Stop()

	for {
		if h.life.stopping() {
			return
		}
		b.beat(ctx)

		timer.Reset(h.interval)
		select {
		case <-h.life.stop:
			return
		case <-timer.C:
		}
	}
}

// beater is the loop-local state of a running heartbeat
type beater struct {
	h   *Heartbeat
	bit bool
}

// beat flips the bit and writes it, whatever happened last time
func (b *beater) beat(ctx context.Context) {
	h := b.h
	b.bit = !b.bit
	value := 0
	if b.bit {
		value = 1
	}

	ok, err := h.plc.Write(ctx, h.address, value)
	if err == nil && !ok {
		err = NotAcknowledgedError{Address: h.address}
	}
	if err != nil {
		h.logger.Warn("beat failed", zap.Int("value", value), zap.Error(err))
		if h.onFailed != nil {
			h.onFailed(err)
		}
	}
}
