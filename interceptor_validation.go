package gokeyence

import (
	"fmt"
	"strings"
)

// ValidationInterceptor creates an interceptor that rejects oversized operations
// before they reach the wire.
//
// Example:
//
//	client.AddInterceptor(gokeyence.ValidationInterceptor())
//
//	// This will fail validation
//	_, err := client.Read(ctx, "DM100", 5000)
//	// Error: read count too large: 5000 (max 1000)
func ValidationInterceptor() Interceptor {
	return ValidationInterceptorWithLimits(MAX_READ_COUNT, MAX_READ_COUNT)
}

// ValidationInterceptorWithLimits creates a validation interceptor with custom limits
// maxReadCount: maximum number of registers that can be read in a single operation
// maxWriteCount: maximum number of values that can be written in a single operation
func ValidationInterceptorWithLimits(maxReadCount, maxWriteCount int) Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		if info.Address == "" {
			return nil, fmt.Errorf("empty register address")
		}

		switch info.Operation {
		case OpRead:
			if info.Count > maxReadCount {
				return nil, fmt.Errorf("read count too large: %d (max %d)", info.Count, maxReadCount)
			}

		case OpWrite:
			n := writeLength(info.Data)
			if n > maxWriteCount {
				return nil, fmt.Errorf("write count too large: %d (max %d)", n, maxWriteCount)
			}
		}

		return c.Invoke(nil)
	}
}

// writeLength counts the registers a payload will occupy
func writeLength(data interface{}) int {
	switch d := data.(type) {
	case string:
		return (len(d) + 1) / PACKED_CHUNK_SIZE
	case []byte:
		// text for the packed scheme, one value per byte for fixed width
		return len(d)
	case []int:
		return len(d)
	case []int8:
		return len(d)
	case []int16:
		return len(d)
	case []int32:
		return len(d)
	case []int64:
		return len(d)
	case []uint:
		return len(d)
	case []uint16:
		return len(d)
	case []uint32:
		return len(d)
	case []uint64:
		return len(d)
	default:
		return 1
	}
}

// DeviceAllowlist creates an interceptor that only lets operations through
// for the listed device prefixes (e.g. "DM", "EM").
//
// Example:
//
//	client.AddInterceptor(gokeyence.DeviceAllowlist("DM"))
func DeviceAllowlist(devices ...string) Interceptor {
	allowed := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		allowed[strings.ToUpper(d)] = struct{}{}
	}

	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		reg, err := ParseRegister(info.Address)
		if err != nil {
			return nil, err
		}
		if _, ok := allowed[reg.Device]; !ok {
			return nil, fmt.Errorf("device %s is not allowed", reg.Device)
		}
		return c.Invoke(nil)
	}
}

// ReadOnlyInterceptor creates an interceptor that blocks all write operations
//
// Example:
//
//	client.AddInterceptor(gokeyence.ReadOnlyInterceptor())
func ReadOnlyInterceptor() Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		info := c.Info()
		if info.Operation == OpWrite {
			return nil, fmt.Errorf("write to %s is not allowed in read-only mode", info.Address)
		}

		return c.Invoke(nil)
	}
}
