package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// SQLLogger routes GORM output through zap, tagging every entry with the
// request, tenant and trace ids found on the statement context.
type SQLLogger struct {
	log         *zap.Logger
	level       gormlogger.LogLevel
	slowQuery   time.Duration
	maxSQL      int
	logNotFound bool
}

// SQLOption tunes an SQLLogger.
type SQLOption func(*SQLLogger)

// WithSlowQuery sets the duration above which a statement is logged as slow.
// Zero disables slow query reporting.
func WithSlowQuery(d time.Duration) SQLOption {
	return func(l *SQLLogger) { l.slowQuery = d }
}

// WithMaxSQLLength truncates logged statements to n bytes. Bulk seed upserts
// produce very long statements.
func WithMaxSQLLength(n int) SQLOption {
	return func(l *SQLLogger) { l.maxSQL = n }
}

// WithNotFoundLogging reports gorm.ErrRecordNotFound as an error. Lookups
// that miss are expected in this codebase, so they are quiet by default.
func WithNotFoundLogging() SQLOption {
	return func(l *SQLLogger) { l.logNotFound = true }
}

// NewSQLLogger builds a GORM logger on top of base.
func NewSQLLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...SQLOption) *SQLLogger {
	if base == nil {
		base = zap.NewNop()
	}
	l := &SQLLogger{
		log:       base.Named("sql"),
		level:     level,
		slowQuery: defaultSlowQuery,
		maxSQL:    4096,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface.
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface.
func (l *SQLLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Info, msg, args)
}

// Warn implements gormlogger.Interface.
func (l *SQLLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Warn, msg, args)
}

// Error implements gormlogger.Interface.
func (l *SQLLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Error, msg, args)
}

func (l *SQLLogger) printf(ctx context.Context, at gormlogger.LogLevel, msg string, args []any) {
	if l.level < at {
		return
	}
	text := fmt.Sprintf(msg, args...)
	fields := contextFields(ctx)
	switch at {
	case gormlogger.Error:
		l.log.Error(text, fields...)
	case gormlogger.Warn:
		l.log.Warn(text, fields...)
	default:
		l.log.Info(text, fields...)
	}
}

// Trace implements gormlogger.Interface. Failed statements log at error,
// slow ones at warn and everything else at debug.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) && !l.logNotFound {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slowQuery > 0 && elapsed > l.slowQuery

	var msg string
	switch {
	case err != nil && l.level >= gormlogger.Error:
		msg = "query failed"
	case slow && l.level >= gormlogger.Warn:
		msg = "slow query"
	case l.level >= gormlogger.Info:
		msg = "query"
	default:
		return
	}

	stmt, rows := fc()
	if l.maxSQL > 0 && len(stmt) > l.maxSQL {
		stmt = stmt[:l.maxSQL] + "..."
	}
	fields := append(contextFields(ctx),
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)

	switch msg {
	case "query failed":
		l.log.Error(msg, append(fields, zap.Error(err))...)
	case "slow query":
		l.log.Warn(msg, append(fields, zap.Duration("threshold", l.slowQuery))...)
	default:
		l.log.Debug(msg, fields...)
	}
}

// MapGormLogLevel converts an application log level to the GORM level.
// Statements are only traced when the application runs at debug.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error", "fatal", "panic":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
