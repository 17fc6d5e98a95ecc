package gokeyence

import (
	"sync"
	"time"
)

// OperationStats is a per-operation summary
type OperationStats struct {
	Count       int64
	Errors      int64
	AvgDuration time.Duration
}

// MetricsCollector collects operation metrics including counts, errors, and durations
// It is safe for concurrent use and can be registered as a Plugin.
//
// Example:
//
//	metrics := gokeyence.NewMetricsCollector()
//	client.Use(metrics)
//
//	// Perform operations...
//	client.Read(ctx, "DM100", 5)
//
//	// Get statistics
//	count, errors, avgDuration := metrics.GetStats(gokeyence.OpRead)
//	log.Printf("Read: %d calls, %d errors, avg: %v", count, errors, avgDuration)
type MetricsCollector struct {
	mu             sync.RWMutex
	OperationCount map[OperationType]int64
	ErrorCount     map[OperationType]int64
	TotalDuration  map[OperationType]time.Duration
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		OperationCount: make(map[OperationType]int64),
		ErrorCount:     make(map[OperationType]int64),
		TotalDuration:  make(map[OperationType]time.Duration),
	}
}

// Name implements Plugin.
func (m *MetricsCollector) Name() string { return "metrics" }

// Initialize implements Plugin by installing the metrics interceptor.
func (m *MetricsCollector) Initialize(c *Client) error {
	c.AddInterceptor(m.Interceptor())
	return nil
}

// Interceptor returns an interceptor that collects metrics
func (m *MetricsCollector) Interceptor() Interceptor {
	return func(c *InterceptorCtx) (interface{}, error) {
		start := time.Now()

		result, err := c.Invoke(nil)

		duration := time.Since(start)

		m.mu.Lock()
		op := c.Info().Operation
		m.OperationCount[op]++
		m.TotalDuration[op] += duration
		if err != nil {
			m.ErrorCount[op]++
		}
		m.mu.Unlock()

		return result, err
	}
}

// GetStats returns statistics for a specific operation
// Returns: count, errors, avgDuration
func (m *MetricsCollector) GetStats(op OperationType) (count int64, errors int64, avgDuration time.Duration) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count = m.OperationCount[op]
	errors = m.ErrorCount[op]
	if count > 0 {
		avgDuration = m.TotalDuration[op] / time.Duration(count)
	}
	return
}

// Reset clears all collected metrics
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OperationCount = make(map[OperationType]int64)
	m.ErrorCount = make(map[OperationType]int64)
	m.TotalDuration = make(map[OperationType]time.Duration)
}

// GetAllStats returns statistics for all operations
func (m *MetricsCollector) GetAllStats() map[OperationType]OperationStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[OperationType]OperationStats, len(m.OperationCount))
	for op, count := range m.OperationCount {
		s := OperationStats{Count: count, Errors: m.ErrorCount[op]}
		if count > 0 {
			s.AvgDuration = m.TotalDuration[op] / time.Duration(count)
		}
		stats[op] = s
	}
	return stats
}

var _ Plugin = (*MetricsCollector)(nil)
