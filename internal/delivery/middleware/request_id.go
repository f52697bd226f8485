package middleware

import (
	"log/slog"

	deliverycontext "qimat/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// RequestIDMiddleware assigns every request an id and a logger tagged with it.
type RequestIDMiddleware struct {
	logger *slog.Logger
}

func NewRequestIDMiddleware(logger *slog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{logger: logger}
}

// Process reuses a well-formed X-Request-Id header and echoes the id back.
func (m *RequestIDMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := deliverycontext.NormalizeRequestID(c.Request().Header.Get(deliverycontext.HeaderXRequestID))
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		deliverycontext.Bind(c, requestID, m.logger.With(slog.String("request_id", requestID)))

		return next(c)
	}
}
