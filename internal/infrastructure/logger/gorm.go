package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger routes GORM's log output through zap. Query traces carry the
// request and owner scope when the context has them, so a slow query can be
// tied back to the HTTP request that issued it.
type GormLogger struct {
	log           *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	skipNotFound  bool
}

// GormLoggerOption adjusts a GormLogger during construction.
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the elapsed time above which a query is
// reported as slow.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = d
	}
}

// WithIgnoreRecordNotFoundError controls whether gorm.ErrRecordNotFound is
// traced as an error. Lookups that legitimately miss are the common case
// here, so the default is to skip them.
func WithIgnoreRecordNotFoundError(skip bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.skipNotFound = skip
	}
}

// NewGormLogger builds a GORM logger on top of the given zap logger.
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		log:           log.Named("gorm"),
		logLevel:      level,
		slowThreshold: defaultSlowThreshold,
		skipNotFound:  true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode returns a copy at the given level, as gormlogger.Interface requires.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.logLevel >= gormlogger.Info {
		l.log.Sugar().Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.logLevel >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.logLevel >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, args...)
	}
}

// Trace reports one executed statement. Errors log at error level, queries
// over the slow threshold at warn, everything else at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := l.traceFields(ctx, sql, rows, elapsed)

	switch {
	case err != nil && l.logLevel >= gormlogger.Error:
		if l.skipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.log.Error("SQL Error", append(fields, zap.Error(err))...)

	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.logLevel >= gormlogger.Warn:
		l.log.Warn("SLOW SQL", append(fields, zap.Duration("threshold", l.slowThreshold))...)

	case l.logLevel >= gormlogger.Info:
		l.log.Debug("SQL Query", fields...)
	}
}

func (l *GormLogger) traceFields(ctx context.Context, sql string, rows int64, elapsed time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if userID := GetUserID(ctx); userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	if entityID := GetEntityID(ctx); entityID != "" {
		fields = append(fields, zap.String("entity_id", entityID))
	}
	return fields
}

// MapGormLogLevel translates the application log level into the closest
// GORM trace level. Anything unrecognized gets warn, loud enough to notice
// slow queries without flooding the log with every statement.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
