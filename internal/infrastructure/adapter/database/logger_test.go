package database

import (
	"context"
	"errors"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

type recordedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	logs []recordedLog
}

func (r *recordingLogger) SetLevel(coreport.LogLevel)  {}
func (r *recordingLogger) GetLevel() coreport.LogLevel { return coreport.LogLevelDebug }
func (r *recordingLogger) Debug(msg string, f map[string]any) {
	r.logs = append(r.logs, recordedLog{"debug", msg, f})
}
func (r *recordingLogger) Info(msg string, f map[string]any) {
	r.logs = append(r.logs, recordedLog{"info", msg, f})
}
func (r *recordingLogger) Warn(msg string, f map[string]any) {
	r.logs = append(r.logs, recordedLog{"warn", msg, f})
}
func (r *recordingLogger) Error(msg string, f map[string]any) {
	r.logs = append(r.logs, recordedLog{"error", msg, f})
}
func (r *recordingLogger) Flush() error { return nil }

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT * FROM trns", 3 }

	t.Run("Errors log regardless of elapsed time", func(t *testing.T) {
		core := &recordingLogger{}
		l := NewDatabaseLogger(core, nil, "warn")

		l.Trace(ctx, time.Now(), stmt, errors.New("boom"))

		require.Len(t, core.logs, 1)
		assert.Equal(t, "error", core.logs[0].level)
		assert.Equal(t, "boom", core.logs[0].fields["error"])
		assert.Equal(t, "SELECT", core.logs[0].fields["type"])
	})

	t.Run("Slow statements warn", func(t *testing.T) {
		core := &recordingLogger{}
		l := NewDatabaseLogger(core, nil, "warn")

		l.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)

		require.Len(t, core.logs, 1)
		assert.Equal(t, "warn", core.logs[0].level)
		assert.Equal(t, int64(3), core.logs[0].fields["rows"])
	})

	t.Run("Fast statements are quiet below info", func(t *testing.T) {
		core := &recordingLogger{}
		l := NewDatabaseLogger(core, nil, "warn")

		l.Trace(ctx, time.Now(), stmt, nil)

		assert.Empty(t, core.logs)
	})

	t.Run("Silent suppresses everything", func(t *testing.T) {
		core := &recordingLogger{}
		l := NewDatabaseLogger(core, nil, "silent")

		l.Trace(ctx, time.Now().Add(-time.Second), stmt, errors.New("boom"))

		assert.Empty(t, core.logs)
	})

	t.Run("LogMode returns an adjusted copy", func(t *testing.T) {
		core := &recordingLogger{}
		l := NewDatabaseLogger(core, nil, "warn")

		quiet := l.LogMode(gormlogger.Silent)
		quiet.Trace(ctx, time.Now(), stmt, errors.New("boom"))
		assert.Empty(t, core.logs)

		l.Trace(ctx, time.Now(), stmt, errors.New("boom"))
		assert.Len(t, core.logs, 1)
	})
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseGormLevel("silent"))
	assert.Equal(t, gormlogger.Error, parseGormLevel("error"))
	assert.Equal(t, gormlogger.Info, parseGormLevel("info"))
	assert.Equal(t, gormlogger.Warn, parseGormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, parseGormLevel(""))
}
