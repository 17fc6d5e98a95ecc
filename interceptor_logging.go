package gokeyence

import (
	"time"

	"go.uber.org/zap"
)

// LoggingInterceptor creates an interceptor that logs all operations
// It logs operation start, end, duration, and any errors
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	client.AddInterceptor(gokeyence.LoggingInterceptor(logger))
//
// Output:
//
//	INFO	KV	starting	{"operation": "Read", "address": "DM100", "count": 1}
//	INFO	KV	completed	{"operation": "Read", "duration": "1.2ms"}
func LoggingInterceptor(logger *zap.Logger) Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Named logger keeps consistent component label.
	logger = logger.Named("KV")

	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		start := time.Now()

		fields := []zap.Field{
			zap.String("operation", string(info.Operation)),
			zap.String("address", info.Address),
		}
		if info.Operation == OpRead {
			fields = append(fields, zap.Int("count", info.Count))
		} else {
			fields = append(fields, zap.Any("data", info.Data))
		}
		logger.Info("starting", fields...)

		result, err := c.Invoke(nil)

		duration := time.Since(start)
		if err != nil {
			logger.Error("failed",
				zap.String("operation", string(info.Operation)),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			logger.Info("completed",
				zap.String("operation", string(info.Operation)),
				zap.Duration("duration", duration),
			)
		}

		return result, err
	}
}
