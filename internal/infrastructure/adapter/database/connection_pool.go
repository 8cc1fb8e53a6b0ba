package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
)

// PoolSnapshot is a point-in-time view of the connection pool, taken by
// PoolMonitor and served to the health endpoint.
type PoolSnapshot struct {
	OpenConnections    int
	IdleConnections    int
	InUse              int
	MaxOpenConnections int
	WaitCount          int64
	WaitDuration       time.Duration
	SampledAt          time.Time
	Reachable          bool
}

// poolSaturationRatio is the in-use fraction above which the monitor warns.
// Ledger reads fan out per portfolio, so sustained saturation here usually
// means a slow ladder query is holding connections.
const poolSaturationRatio = 0.75

const poolPingTimeout = 3 * time.Second

// PoolMonitor samples the pool periodically and keeps the latest snapshot.
type PoolMonitor struct {
	db     *Manager
	logger coreport.Logger

	mu       sync.RWMutex
	snapshot PoolSnapshot

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPoolMonitor creates a monitor over the manager's connection pool.
func NewPoolMonitor(db *Manager, logger coreport.Logger) *PoolMonitor {
	return &PoolMonitor{
		db:       db,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start takes an initial sample and then samples on the given interval
// until Stop is called. The initial sample failing is an error so a broken
// pool is caught at startup instead of in the background.
func (m *PoolMonitor) Start(interval time.Duration) error {
	if err := m.sample(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.sample(); err != nil {
					m.logger.Error("Connection pool sample failed", map[string]any{
						"error": err.Error(),
					})
				}
			case <-m.stopChan:
				return
			}
		}
	}()

	return nil
}

// Stop halts sampling. Safe to call more than once.
func (m *PoolMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// Snapshot returns the most recent sample.
func (m *PoolMonitor) Snapshot() PoolSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Healthy reports whether the last sample could reach the database.
func (m *PoolMonitor) Healthy() bool {
	return m.Snapshot().Reachable
}

func (m *PoolMonitor) sample() error {
	sqlDB, err := m.db.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), poolPingTimeout)
	defer cancel()
	reachable := sqlDB.PingContext(ctx) == nil
	if !reachable {
		m.logger.Error("Database ping failed", nil)
	}

	stats := sqlDB.Stats()
	snap := PoolSnapshot{
		OpenConnections:    stats.OpenConnections,
		IdleConnections:    stats.Idle,
		InUse:              stats.InUse,
		MaxOpenConnections: stats.MaxOpenConnections,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		SampledAt:          time.Now(),
		Reachable:          reachable,
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	if stats.MaxOpenConnections > 0 &&
		float64(stats.InUse) > float64(stats.MaxOpenConnections)*poolSaturationRatio {
		m.logger.Warn("Connection pool nearly saturated", map[string]any{
			"in_use":       stats.InUse,
			"max_open":     stats.MaxOpenConnections,
			"idle":         stats.Idle,
			"wait_count":   stats.WaitCount,
			"wait_time_ms": stats.WaitDuration.Milliseconds(),
		})
	}

	return nil
}
