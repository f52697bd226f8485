// Package context carries request-scoped values between the HTTP layer and the usecases.
package context

import (
	"context"
	"log/slog"
	"unicode"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keyLogger    contextKey = "logger"
	keyActor     contextKey = "actor"

	// HeaderXRequestID is echoed back on every response.
	HeaderXRequestID = "X-Request-Id"

	maxRequestIDLength = 128
)

// NormalizeRequestID returns the client supplied id when it is short and printable,
// otherwise a fresh UUID.
func NormalizeRequestID(requestID string) string {
	if requestID == "" || len(requestID) > maxRequestIDLength {
		return uuid.NewString()
	}
	for _, r := range requestID {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return uuid.NewString()
		}
	}

	return requestID
}

// RequestID returns the id stored on the echo context, or "" before the request id middleware ran.
func RequestID(c echo.Context) string {
	id, _ := c.Get(string(keyRequestID)).(string)

	return id
}

// Bind stores the request id and its logger on both the echo context and the request context.
func Bind(c echo.Context, requestID string, logger *slog.Logger) {
	c.Set(string(keyRequestID), requestID)

	ctx := context.WithValue(c.Request().Context(), keyRequestID, requestID)
	ctx = WithLogger(ctx, logger)
	c.SetRequest(c.Request().WithContext(ctx))
}

// RequestIDFromContext returns the request id carried by ctx.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)

	return id
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// LoggerOr returns the request-scoped logger, or fallback outside a request.
func LoggerOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// WithActor records the authenticated admin on ctx and tags its logger with them.
func WithActor(ctx context.Context, actor string) context.Context {
	ctx = context.WithValue(ctx, keyActor, actor)
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		ctx = WithLogger(ctx, logger.With(slog.String("actor", actor)))
	}

	return ctx
}

// Actor returns the admin recorded by WithActor.
func Actor(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(keyActor).(string)

	return actor, ok && actor != ""
}
