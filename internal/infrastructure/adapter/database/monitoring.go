package database

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
)

// slowQueryThreshold flags repository operations worth a warning. Ledger
// scans routinely return hundreds of rows, so this sits above the GORM
// per-statement threshold.
const slowQueryThreshold = 500 * time.Millisecond

// QueryMetrics describes one measured repository operation.
type QueryMetrics struct {
	Operation    string
	Duration     time.Duration
	RowsAffected int64
	Failed       bool
	ErrorMessage string
}

// OperationStats accumulates per-operation totals across a process lifetime.
type OperationStats struct {
	Calls         int64
	Failures      int64
	TotalDuration time.Duration
}

// MetricsCollector measures repository operations and keeps running totals
// keyed by operation name.
type MetricsCollector struct {
	logger       coreport.Logger
	timeProvider coreport.TimeProvider

	mu    sync.Mutex
	stats map[string]*OperationStats
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger coreport.Logger, timeProvider coreport.TimeProvider) *MetricsCollector {
	return &MetricsCollector{
		logger:       logger,
		timeProvider: timeProvider,
		stats:        map[string]*OperationStats{},
	}
}

// MeasureQuery times fn, records it against the operation, and warns when
// it crosses the slow threshold. The operation's error passes through.
func (c *MetricsCollector) MeasureQuery(ctx context.Context, operation string, fn func() (int64, error)) (*QueryMetrics, error) {
	start := c.timeProvider.Now()
	rows, err := fn()

	metrics := &QueryMetrics{
		Operation:    operation,
		Duration:     c.timeProvider.Now().Sub(start),
		RowsAffected: rows,
		Failed:       err != nil,
	}
	if err != nil {
		metrics.ErrorMessage = err.Error()
	}

	c.record(metrics)

	if metrics.Duration > slowQueryThreshold {
		c.logger.Warn("Slow repository operation", map[string]any{
			"operation":   operation,
			"duration_ms": metrics.Duration.Milliseconds(),
			"rows":        rows,
			"failed":      metrics.Failed,
		})
	}

	return metrics, err
}

// Stats returns a copy of the accumulated totals for an operation.
func (c *MetricsCollector) Stats(operation string) OperationStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stats[operation]; ok {
		return *s
	}
	return OperationStats{}
}

func (c *MetricsCollector) record(m *QueryMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stats[m.Operation]
	if !ok {
		s = &OperationStats{}
		c.stats[m.Operation] = s
	}
	s.Calls++
	if m.Failed {
		s.Failures++
	}
	s.TotalDuration += m.Duration
}
