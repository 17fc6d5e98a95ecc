package gokeyence

import "context"

// NopClient implements KVClient with no-op behavior.
// Reads return an empty response and writes report success.
// Useful for tests or placeholders where a real controller is not required.
type NopClient struct{}

func (NopClient) SetInterceptor(Interceptor) {}
func (NopClient) AddInterceptor(Interceptor) {}
func (NopClient) Use(...Plugin) error        { return nil }
func (NopClient) IsClosed() bool             { return false }
func (NopClient) Close() error               { return nil }
func (NopClient) Read(context.Context, string, int) (Response, error) {
	return Response{}, nil
}
func (NopClient) Write(context.Context, string, interface{}) (bool, error) {
	return true, nil
}

var _ KVClient = NopClient{}
