package gokeyence

import "context"

// Reader reads registers
type Reader interface {
	Read(ctx context.Context, address string, count int) (Response, error)
}

// Writer writes registers
type Writer interface {
	Write(ctx context.Context, address string, data interface{}) (bool, error)
}

// PLC is the read/write capability Monitor and Heartbeat depend on.
// Client, InlineClient and test doubles satisfy it.
type PLC interface {
	Reader
	Writer
}

// Interceptor/plugin hooks.
type ClientHooks interface {
	SetInterceptor(interceptor Interceptor)
	AddInterceptor(interceptor Interceptor)
	Use(plugins ...Plugin) error
}

// Lifecycle controls.
type ClientLifecycle interface {
	IsClosed() bool
	Close() error
}

// KVClient defines the public contract of Client for easier testing/mocking.
type KVClient interface {
	PLC
	ClientHooks
	ClientLifecycle
}

// Ensure Client implements the interface.
var _ KVClient = (*Client)(nil)
