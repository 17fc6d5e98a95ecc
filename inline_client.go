package gokeyence

import (
	"context"
)

// InlineClient exposes the Client API against a Server without a network.
// Commands still go through the codec and the simulator's command grammar.
type InlineClient struct {
	srv   *Server
	codec Codec
}

// Inline client implements KVClient (hooks are no-ops).
var _ KVClient = (*InlineClient)(nil)

// InlineClient returns a client bound to the server's memory.
// A nil codec selects FixedWidthCodec.
func (s *Server) InlineClient(codec Codec) *InlineClient {
	if codec == nil {
		codec = FixedWidthCodec{}
	}
	return &InlineClient{srv: s, codec: codec}
}

func (*InlineClient) SetInterceptor(Interceptor) {}
func (*InlineClient) AddInterceptor(Interceptor) {}
func (*InlineClient) Use(...Plugin) error        { return nil }

func (ic *InlineClient) IsClosed() bool {
	return ic.srv.IsClosed()
}

func (*InlineClient) Close() error { return nil }

func (ic *InlineClient) Read(ctx context.Context, address string, count int) (Response, error) {
	if err := ic.check(ctx); err != nil {
		return Response{}, err
	}
	cmd, err := ic.codec.EncodeRead(address, count)
	if err != nil {
		return Response{}, err
	}
	return ic.codec.Decode([]byte(ic.srv.handle(string(cmd.Encode()))))
}

func (ic *InlineClient) Write(ctx context.Context, address string, data interface{}) (bool, error) {
	if err := ic.check(ctx); err != nil {
		return false, err
	}
	cmd, err := ic.codec.EncodeWrite(address, data)
	if err != nil {
		return false, err
	}
	resp, err := ic.codec.Decode([]byte(ic.srv.handle(string(cmd.Encode()))))
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}

func (ic *InlineClient) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ic.srv.IsClosed() {
		return ClientClosedError{}
	}
	return nil
}
