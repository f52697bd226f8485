package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"qimat/config"
	deliverycontext "qimat/internal/delivery/context"
	"qimat/internal/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// queryLogger sends gorm output to the request-scoped slog logger so SQL lines
// carry the request id. Missing rows are expected lookups and never logged.
type queryLogger struct {
	base      *slog.Logger
	level     logger.LogLevel
	slowQuery time.Duration
}

func newQueryLogger(base *slog.Logger, cfg *config.Config) logger.Interface {
	l := &queryLogger{
		base:      base,
		level:     logger.Warn,
		slowQuery: defaultSlowQuery,
	}
	if cfg.Env.Debug {
		l.level = logger.Info
	}
	if cfg.Env.Log.SlowQuery > 0 {
		l.slowQuery = cfg.Env.Log.SlowQuery
	}

	return l
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *queryLogger) printf(ctx context.Context, threshold logger.LogLevel, level slog.Level, msg string, args ...any) {
	if l.level < threshold {
		return
	}
	l.logger(ctx).Log(ctx, level, fmt.Sprintf(msg, args...))
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.logger(ctx).LogAttrs(ctx, slog.LevelError, "Query failed",
			slog.String("sql", sql), slog.Int64("rows", rows), slog.Duration("elapsed", elapsed), slog.String("error", err.Error()))
	case elapsed > l.slowQuery && l.level >= logger.Warn:
		sql, rows := fc()
		l.logger(ctx).LogAttrs(ctx, slog.LevelWarn, "Slow query",
			slog.String("sql", sql), slog.Int64("rows", rows), slog.Duration("elapsed", elapsed), slog.Duration("threshold", l.slowQuery))
	case l.level >= logger.Info:
		sql, rows := fc()
		l.logger(ctx).LogAttrs(ctx, slog.LevelDebug, "Query",
			slog.String("sql", sql), slog.Int64("rows", rows), slog.Duration("elapsed", elapsed))
	}
}

func (l *queryLogger) logger(ctx context.Context) *slog.Logger {
	base := l.base
	if ctx != nil {
		base = deliverycontext.LoggerOr(ctx, l.base)
	}

	return base.With(slog.String("component", "gorm"))
}
