package gokeyence

import "context"

// OperationType represents the type of client operation
type OperationType string

const (
	OpRead  OperationType = "Read"
	OpWrite OperationType = "Write"
)

// InterceptorInfo contains information about the operation being performed
type InterceptorInfo struct {
	Operation OperationType
	Address   string
	Count     int         // Registers requested by a read
	Data      interface{} // Payload of a write
}

// Invoker is a function that executes the actual operation
type Invoker func(ctx context.Context) (interface{}, error)

// InterceptorCtx is handed to every interceptor.
// It carries the operation context, the operation info and the next handler.
type InterceptorCtx struct {
	ctx     context.Context
	info    *InterceptorInfo
	invoker Invoker
}

// Context returns the context of the operation
func (c *InterceptorCtx) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Info returns the operation being performed
func (c *InterceptorCtx) Info() *InterceptorInfo {
	return c.info
}

// Invoke calls the next interceptor or the operation itself.
// A nil ctx reuses the operation context.
func (c *InterceptorCtx) Invoke(ctx context.Context) (interface{}, error) {
	if ctx == nil {
		ctx = c.Context()
	}
	return c.invoker(ctx)
}

// Interceptor can wrap client operations.
// It can log the operation, measure timing, reject it before any I/O or
// short-circuit it entirely.
//
// Example:
//
//	func auditInterceptor(c *gokeyence.InterceptorCtx) (interface{}, error) {
//	    info := c.Info()
//	    log.Printf("%s %s", info.Operation, info.Address)
//	    return c.Invoke(nil)
//	}
type Interceptor func(c *InterceptorCtx) (interface{}, error)

// ChainInterceptors chains multiple interceptors into a single interceptor
// Interceptors are executed in order: first interceptor wraps second, second wraps third, etc.
func ChainInterceptors(interceptors ...Interceptor) Interceptor {
	if len(interceptors) == 0 {
		return nil
	}

	if len(interceptors) == 1 {
		return interceptors[0]
	}

	return func(c *InterceptorCtx) (interface{}, error) {
		return interceptors[0](&InterceptorCtx{
			ctx:  c.ctx,
			info: c.info,
			invoker: func(ctx context.Context) (interface{}, error) {
				return ChainInterceptors(interceptors[1:]...)(&InterceptorCtx{
					ctx:     ctx,
					info:    c.info,
					invoker: c.invoker,
				})
			},
		})
	}
}
