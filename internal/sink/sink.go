// Package sink publishes register change events to message brokers.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	EventChanged      = "changed"
	EventDisconnected = "disconnected"
	EventConnected    = "connected"
)

// Event is one observation published to every sink as JSON.
type Event struct {
	Event     string    `json:"event"`
	PLC       string    `json:"plc"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Values    []string  `json:"values,omitempty"`
	Text      string    `json:"text,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Encode renders the event payload
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Sink delivers events to one destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Fanout publishes every event to all sinks. A failing sink does not keep
// the event from reaching the others.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{sinks: sinks, logger: logger.Named("sink")}
}

// Len returns the number of sinks
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// Publish sends evt to every sink and joins their errors.
func (f *Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, evt); err != nil {
			f.logger.Warn("publish failed",
				zap.String("sink", s.Name()),
				zap.String("name", evt.Name),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
