package gokeyence

import (
	"context"
	"fmt"
	"net"
	"sync"
)

// Client Keyence upper link client.
// Thread-safe: every Read and Write holds one lock for its full send and
// receive round trip, so exchanges issued through the same Client never
// interleave on the wire.
//
// The client adds no timeout of its own. If the transport never delivers a
// reply the call blocks until the caller's context ends; with a context that
// never ends it blocks forever.
type Client struct {
	transport Transport
	codec     Codec
	wireMu    sync.Mutex // Serializes wire exchanges

	closed     bool
	closeMutex sync.RWMutex // Protects closed flag

	interceptorMu sync.RWMutex
	interceptors  []Interceptor

	plugins pluginManager
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithCodec selects the data scheme. Default: FixedWidthCodec.
func WithCodec(codec Codec) ClientOption {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithInterceptors installs interceptors at construction time
func WithInterceptors(interceptors ...Interceptor) ClientOption {
	return func(c *Client) {
		c.interceptors = append(c.interceptors, interceptors...)
	}
}

// NewClient creates a client that exclusively owns transport
func NewClient(transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		codec:     FixedWidthCodec{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to a controller at address ("host:port") over "udp" or "tcp"
func Dial(ctx context.Context, network, address string, opts ...ClientOption) (*Client, error) {
	switch network {
	case "udp", "udp4", "udp6":
		remote, err := net.ResolveUDPAddr(network, address)
		if err != nil {
			return nil, err
		}
		t, err := NewUDPTransport(nil, remote)
		if err != nil {
			return nil, err
		}
		return NewClient(t, opts...), nil
	case "tcp", "tcp4", "tcp6":
		remote, err := net.ResolveTCPAddr(network, address)
		if err != nil {
			return nil, err
		}
		t, err := NewTCPTransport(ctx, remote)
		if err != nil {
			return nil, err
		}
		return NewClient(t, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported network %q (use udp or tcp)", network)
	}
}

// Codec returns the data scheme in use
func (c *Client) Codec() Codec {
	return c.codec
}

// SetInterceptor replaces all interceptors with the given one (nil clears them)
func (c *Client) SetInterceptor(interceptor Interceptor) {
	c.interceptorMu.Lock()
	defer c.interceptorMu.Unlock()
	if interceptor == nil {
		c.interceptors = nil
		return
	}
	c.interceptors = []Interceptor{interceptor}
}

// AddInterceptor appends an interceptor; earlier interceptors wrap later ones
func (c *Client) AddInterceptor(interceptor Interceptor) {
	if interceptor == nil {
		return
	}
	c.interceptorMu.Lock()
	defer c.interceptorMu.Unlock()
	c.interceptors = append(c.interceptors, interceptor)
}

// Use registers plugins
func (c *Client) Use(plugins ...Plugin) error {
	return c.plugins.use(c, plugins...)
}

// Plugin returns the registered plugin with the given name
func (c *Client) Plugin(name string) (Plugin, bool) {
	return c.plugins.lookup(name)
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.closeMutex.RLock()
	defer c.closeMutex.RUnlock()
	return c.closed
}

// Close closes the transport. It does not wait for an in-flight exchange.
func (c *Client) Close() error {
	c.closeMutex.Lock()
	if c.closed {
		c.closeMutex.Unlock()
		return nil
	}
	c.closed = true
	c.closeMutex.Unlock()

	if c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

// Read reads count registers starting at address
func (c *Client) Read(ctx context.Context, address string, count int) (Response, error) {
	if c.IsClosed() {
		return Response{}, ClientClosedError{}
	}
	cmd, err := c.codec.EncodeRead(address, count)
	if err != nil {
		return Response{}, err
	}

	info := &InterceptorInfo{Operation: OpRead, Address: address, Count: count}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		return c.exchange(ctx, cmd)
	})
	if err != nil {
		return Response{}, err
	}
	resp, ok := res.(Response)
	if !ok {
		return Response{}, UnexpectedResultError{Operation: OpRead, Result: res}
	}
	return resp, nil
}

// Write writes data starting at address.
// The payload is validated before any I/O. It returns true only when the
// controller acknowledged the write with OK.
func (c *Client) Write(ctx context.Context, address string, data interface{}) (bool, error) {
	if c.IsClosed() {
		return false, ClientClosedError{}
	}
	cmd, err := c.codec.EncodeWrite(address, data)
	if err != nil {
		return false, err
	}

	info := &InterceptorInfo{Operation: OpWrite, Address: address, Data: data}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		return c.exchange(ctx, cmd)
	})
	if err != nil {
		return false, err
	}
	resp, ok := res.(Response)
	if !ok {
		return false, UnexpectedResultError{Operation: OpWrite, Result: res}
	}
	return resp.OK(), nil
}

// exchange performs one send and receive under the wire lock
func (c *Client) exchange(ctx context.Context, cmd Command) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	c.wireMu.Lock()
	defer c.wireMu.Unlock()

	if err := c.transport.Send(ctx, cmd.Encode()); err != nil {
		return Response{}, err
	}
	raw, err := c.transport.Receive(ctx)
	if err != nil {
		return Response{}, err
	}
	return c.codec.Decode(raw)
}

func (c *Client) invoke(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
	c.interceptorMu.RLock()
	chain := ChainInterceptors(c.interceptors...)
	c.interceptorMu.RUnlock()

	if chain == nil {
		return invoker(ctx)
	}
	return chain(&InterceptorCtx{ctx: ctx, info: info, invoker: invoker})
}
