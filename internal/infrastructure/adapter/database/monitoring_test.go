package database

import (
	"context"
	"errors"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingTimeProvider advances a fixed amount on every Now call.
type steppingTimeProvider struct {
	now  time.Time
	step time.Duration
}

func (s *steppingTimeProvider) Now() time.Time {
	s.now = s.now.Add(s.step)
	return s.now
}
func (s *steppingTimeProvider) Since(t time.Time) coreport.Duration {
	return coreport.Duration(s.now.Sub(t))
}
func (s *steppingTimeProvider) Until(t time.Time) coreport.Duration {
	return coreport.Duration(t.Sub(s.now))
}
func (s *steppingTimeProvider) Sleep(coreport.Duration) {}
func (s *steppingTimeProvider) WithTimeout(ctx context.Context, timeout coreport.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}
func (s *steppingTimeProvider) ParseDuration(v string) (coreport.Duration, error) {
	d, err := time.ParseDuration(v)
	return coreport.Duration(d), err
}

func TestMeasureQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("Records duration and rows", func(t *testing.T) {
		tp := &steppingTimeProvider{now: time.Unix(0, 0), step: 10 * time.Millisecond}
		collector := NewMetricsCollector(&recordingLogger{}, tp)

		metrics, err := collector.MeasureQuery(ctx, "trn.find_cash_ledger", func() (int64, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), metrics.RowsAffected)
		assert.Equal(t, 10*time.Millisecond, metrics.Duration)
		assert.False(t, metrics.Failed)
	})

	t.Run("Failures pass the error through and count", func(t *testing.T) {
		tp := &steppingTimeProvider{now: time.Unix(0, 0), step: time.Millisecond}
		collector := NewMetricsCollector(&recordingLogger{}, tp)
		wantErr := errors.New("boom")

		_, err := collector.MeasureQuery(ctx, "trn.save", func() (int64, error) {
			return 0, wantErr
		})
		_, _ = collector.MeasureQuery(ctx, "trn.save", func() (int64, error) {
			return 1, nil
		})

		assert.Equal(t, wantErr, err)
		stats := collector.Stats("trn.save")
		assert.Equal(t, int64(2), stats.Calls)
		assert.Equal(t, int64(1), stats.Failures)
	})

	t.Run("Slow operations warn", func(t *testing.T) {
		logged := &recordingLogger{}
		tp := &steppingTimeProvider{now: time.Unix(0, 0), step: time.Second}
		collector := NewMetricsCollector(logged, tp)

		_, err := collector.MeasureQuery(ctx, "trn.find_cash_ledger", func() (int64, error) {
			return 0, nil
		})

		require.NoError(t, err)
		require.Len(t, logged.logs, 1)
		assert.Equal(t, "warn", logged.logs[0].level)
		assert.Equal(t, "trn.find_cash_ledger", logged.logs[0].fields["operation"])
	})

	t.Run("Unknown operation has zero stats", func(t *testing.T) {
		collector := NewMetricsCollector(&recordingLogger{}, &steppingTimeProvider{now: time.Unix(0, 0)})
		assert.Equal(t, OperationStats{}, collector.Stats("nope"))
	})
}
