package middleware

import (
	"log/slog"

	"qimat/internal/delivery/api/response"
	deliverycontext "qimat/internal/delivery/context"
	domainerrors "qimat/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware renders every error that escapes a handler.
type ErrorMiddleware struct {
	logger *slog.Logger
}

func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger}
}

// HandleHTTPError is installed as echo's HTTPErrorHandler. AppErrors keep their
// status and code, echo errors keep their status, anything else becomes a logged 500.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.LoggerOr(c.Request().Context(), m.logger).With(
		slog.String("method", c.Request().Method),
		slog.String("path", c.Path()),
	)

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= 500 {
			logger.Error("Request failed", slog.String("code", appErr.ErrorCode()), slog.Any("error", err))
		}
		_ = response.FromError(c, appErr)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, ok := httpErr.Message.(string)
		if !ok {
			message = "An error occurred"
		}
		if httpErr.Code >= 500 {
			logger.Error("Request failed", slog.Any("error", err))
		}
		_ = response.Fail(c, httpErr.Code, "HTTP_ERROR", message, nil)

		return
	}

	logger.Error("Unhandled error", slog.Any("error", err))
	_ = response.Internal(c)
}
