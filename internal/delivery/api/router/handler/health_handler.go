package handler

import (
	"context"
	"net/http"
	"time"

	"qimat/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler reports liveness together with database reachability.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler is the constructor for HealthHandler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck answers 200 when the database responds and 503 otherwise.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return response.Fail(c, http.StatusServiceUnavailable, "UNHEALTHY", "Database is unreachable", nil)
	}

	return response.OK(c, map[string]string{"status": "ok"})
}
