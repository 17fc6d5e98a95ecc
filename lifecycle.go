package gokeyence

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// LoopState is the lifecycle state of a Monitor or Heartbeat.
// A stopped loop cannot be restarted; create a new one instead.
type LoopState int32

const (
	StateIdle    LoopState = iota // constructed, not started
	StateRunning                  // polling or beating
	StateStopped                  // terminal

	StatePolling = StateRunning // Monitor name for StateRunning
	StateBeating = StateRunning // Heartbeat name for StateRunning
)

func (s LoopState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("LoopState(%d)", int32(s))
	}
}

// lifecycle owns the stop signal of one background loop
type lifecycle struct {
	state    atomic.Int32
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

func (l *lifecycle) init() {
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
}

// begin moves Idle to Running and launches run on its own goroutine
func (l *lifecycle) begin(name string, run func()) error {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("%s cannot start from state %s", name, l.current())
	}
	go func() {
		defer l.finish()
		run()
	}()
	return nil
}

// end requests the loop to stop. A loop that never started is stopped at once.
func (l *lifecycle) end() {
	l.stopOnce.Do(func() { close(l.stop) })
	if l.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		l.doneOnce.Do(func() { close(l.done) })
	}
}

func (l *lifecycle) finish() {
	l.state.Store(int32(StateStopped))
	l.doneOnce.Do(func() { close(l.done) })
}

func (l *lifecycle) stopping() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}

func (l *lifecycle) current() LoopState {
	return LoopState(l.state.Load())
}
