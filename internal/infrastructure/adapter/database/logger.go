package database

import (
	"context"
	"strings"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"gorm.io/gorm/logger"
)

// Ladder and export queries scan whole portfolios, so the slow threshold
// sits well above a point lookup but below anything a user would notice.
const defaultSlowThreshold = 250 * time.Millisecond

// GormLogger adapts the core logger to GORM's logger.Interface.
type GormLogger struct {
	core          coreport.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
	timeProvider  coreport.TimeProvider
}

// NewDatabaseLogger creates a GORM logger at a named level. Unknown level
// names fall back to warn.
func NewDatabaseLogger(core coreport.Logger, timeProvider coreport.TimeProvider, level string) logger.Interface {
	return &GormLogger{
		core:          core,
		level:         parseGormLevel(level),
		slowThreshold: defaultSlowThreshold,
		timeProvider:  timeProvider,
	}
}

func parseGormLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// LogMode returns a copy at the given level, as GORM expects.
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, _ ...interface{}) {
	if l.level >= logger.Info {
		l.core.Info(msg, map[string]any{"source": "database"})
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, _ ...interface{}) {
	if l.level >= logger.Warn {
		l.core.Warn(msg, map[string]any{"source": "database"})
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, _ ...interface{}) {
	if l.level >= logger.Error {
		l.core.Error(msg, map[string]any{"source": "database"})
	}
}

// Trace logs each statement once it completes. Errors always log, slow
// statements warn, and the rest only show at info level and below.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	var elapsed time.Duration
	if l.timeProvider != nil {
		elapsed = l.timeProvider.Since(begin).Std()
	} else {
		elapsed = time.Since(begin)
	}

	sql, rows := fc()
	fields := map[string]any{
		"elapsed": elapsed.String(),
		"rows":    rows,
		"sql":     sql,
		"source":  "database",
	}
	if verb := statementVerb(sql); verb != "" {
		fields["type"] = verb
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	switch {
	case err != nil && l.level >= logger.Error:
		l.core.Error("SQL error", fields)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		l.core.Warn("Slow SQL", fields)
	case l.level >= logger.Info:
		l.core.Debug("SQL", fields)
	}
}

func statementVerb(sql string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(trimmed, verb) {
			return verb
		}
	}
	return ""
}
