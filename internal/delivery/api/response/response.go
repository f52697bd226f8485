// Package response renders the JSON envelope shared by every API endpoint:
// {"data": ..., "meta": {...}} on success and {"error": {...}, "meta": {...}} on failure.
package response

import (
	"net/http"

	deliverycontext "qimat/internal/delivery/context"
	domainerrors "qimat/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Envelope is the top-level response body.
type Envelope struct {
	Data  any      `json:"data,omitempty"`
	Error *Problem `json:"error,omitempty"`
	Meta  Meta     `json:"meta"`
}

// Problem describes a failed request. Details are only sent for client errors
// other than 401 and 403.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id"`
}

func meta(c echo.Context) Meta {
	return Meta{RequestID: deliverycontext.RequestID(c)}
}

// OK writes data with 200.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Data: data, Meta: meta(c)})
}

// Created writes data with 201.
func Created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Data: data, Meta: meta(c)})
}

// Fail writes an error envelope.
func Fail(c echo.Context, status int, code, message string, details any) error {
	if status >= http.StatusInternalServerError || status == http.StatusUnauthorized || status == http.StatusForbidden {
		details = nil
	}

	return c.JSON(status, Envelope{
		Error: &Problem{Code: code, Message: message, Details: details},
		Meta:  meta(c),
	})
}

// Invalid writes a 400 without details.
func Invalid(c echo.Context, code, message string) error {
	return Fail(c, http.StatusBadRequest, code, message, nil)
}

func Unauthorized(c echo.Context, code, message string) error {
	return Fail(c, http.StatusUnauthorized, code, message, nil)
}

func Forbidden(c echo.Context, code, message string) error {
	return Fail(c, http.StatusForbidden, code, message, nil)
}

// Internal writes the generic 500 body. The cause is never exposed.
func Internal(c echo.Context) error {
	return Fail(c, http.StatusInternalServerError, domainerrors.ErrInternalError.ErrorCode(), domainerrors.ErrInternalError.Message(), nil)
}

// ValidationError writes a 400 listing every failed field.
func ValidationError(c echo.Context, fields []string) error {
	return Fail(c, http.StatusBadRequest, domainerrors.ErrValidationFailed.ErrorCode(), domainerrors.ErrValidationFailed.Message(), fields)
}

// FromError renders an AppError anywhere in err's chain. Other errors are handed
// back with a stack so the HTTP error handler can log them and answer 500.
func FromError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if !errors.As(err, &appErr) {
		return errors.WithStack(err)
	}

	var details any
	if appErr.Details() != "" {
		details = appErr.Details()
	}

	return Fail(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), details)
}
