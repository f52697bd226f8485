package handler

import (
	"strconv"

	"qimat/internal/delivery/api/response"
	"qimat/internal/delivery/api/validator"

	"github.com/labstack/echo/v4"
)

// bindAndValidate binds the request body into req and runs struct validation.
// On failure the error response is already written and ok is false.
func bindAndValidate(c echo.Context, req any, invalidMsg string) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, response.Invalid(c, "INVALID_INPUT", invalidMsg)
	}

	if err := c.Validate(req); err != nil {
		return false, response.ValidationError(c, validator.Messages(err))
	}

	return true, nil
}

// pathID parses a positive int64 path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// queryInt parses an optional integer query parameter. Malformed values yield fallback.
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

// successResult is the body of endpoints that only acknowledge a command.
type successResult struct {
	Success bool `json:"success"`
}
