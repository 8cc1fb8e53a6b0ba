package database

import (
	"context"
	"math/rand"
	"strings"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
)

// RetryConfig controls backoff for retried database operations.
type RetryConfig struct {
	MaxAttempts  int
	BaseInterval time.Duration
	MaxInterval  time.Duration
	JitterFactor float64 // fraction of the backoff added as random jitter, 0 disables
}

// DefaultRetryConfig returns the retry settings used for idempotent reads.
// Rate lookups and ledger scans retry aggressively since they carry no
// write side effects.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  4,
		BaseInterval: 50 * time.Millisecond,
		MaxInterval:  time.Second,
		JitterFactor: 0.25,
	}
}

// RetryOnTransientError runs the operation, retrying while the failure
// looks transient. Non-transient errors return immediately, and a canceled
// context stops the backoff wait.
func RetryOnTransientError(
	ctx context.Context,
	config RetryConfig,
	operation func() error,
	logger coreport.Logger,
) error {
	var err error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if !isTransientError(err) {
			return err
		}

		backoff := backoffFor(attempt, config)
		logger.Warn("Transient database error, retrying", map[string]any{
			"attempt":      attempt + 1,
			"max_attempts": config.MaxAttempts,
			"error":        err.Error(),
			"retry_after":  backoff.String(),
		})

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	logger.Error("Retries exhausted", map[string]any{
		"max_attempts": config.MaxAttempts,
		"error":        err.Error(),
	})
	return err
}

// backoffFor doubles the base interval per attempt, capped, plus jitter.
func backoffFor(attempt int, config RetryConfig) time.Duration {
	backoff := config.BaseInterval << uint(attempt)
	if backoff > config.MaxInterval || backoff <= 0 {
		backoff = config.MaxInterval
	}
	if config.JitterFactor > 0 {
		backoff += time.Duration(rand.Float64() * config.JitterFactor * float64(backoff))
	}
	return backoff
}

// transientMarkers are substrings of driver errors worth a retry. Unique
// constraint violations are deliberately absent: a duplicate caller ref is
// an idempotent replay, not a fault.
var transientMarkers = []string{
	"deadlock",
	"serialization",
	"connection reset",
	"connection refused",
	"timeout",
	"too many connections",
	"server closed",
	"broken pipe",
	"eof",
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
