package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct {
	handler echo.HandlerFunc
}

// NewMetricsHandler exposes reg in the Prometheus text format.
func NewMetricsHandler(reg *prometheus.Registry) *MetricsHandler {
	return &MetricsHandler{
		handler: echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	}
}

// Metrics serves GET /metrics.
func (h *MetricsHandler) Metrics(c echo.Context) error {
	return h.handler(c)
}
