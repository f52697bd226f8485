// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"qimat/internal/delivery/api/middleware"
	"qimat/internal/delivery/api/router/handler"
	"qimat/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	HealthHandler  *handler.HealthHandler
	MetricsHandler *handler.MetricsHandler
	CatalogHandler *handler.CatalogHandler
	PushHandler    *handler.PushHandler
	AdminHandler   *handler.AdminHandler
	PriceHandler   *handler.PriceHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	healthHandler  *handler.HealthHandler
	metricsHandler *handler.MetricsHandler
	catalogHandler *handler.CatalogHandler
	pushHandler    *handler.PushHandler
	adminHandler   *handler.AdminHandler
	priceHandler   *handler.PriceHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		healthHandler:  params.HealthHandler,
		metricsHandler: params.MetricsHandler,
		catalogHandler: params.CatalogHandler,
		pushHandler:    params.PushHandler,
		adminHandler:   params.AdminHandler,
		priceHandler:   params.PriceHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.HealthCheck)
	e.GET("/metrics", r.metricsHandler.Metrics)

	api := e.Group("/api")

	// Storefront
	api.GET("/categories", r.catalogHandler.ListCategories)
	api.GET("/sources", r.catalogHandler.ListSources)
	api.GET("/products", r.catalogHandler.ListProducts)
	api.GET("/products/:slug", r.catalogHandler.GetProduct)
	api.GET("/ticker", r.catalogHandler.GetTicker)

	// Browser push
	pushGroup := api.Group("/push")
	{
		pushGroup.GET("/public-key", r.pushHandler.PublicKey)
		pushGroup.POST("/subscribe", r.pushHandler.Subscribe)
		pushGroup.PUT("/preferences", r.pushHandler.UpdatePreferences)
		pushGroup.POST("/unsubscribe", r.pushHandler.Unsubscribe)
	}

	// Dashboard
	api.POST("/admin/login", r.adminHandler.Login)

	adminGroup := api.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRole(service.RoleAdmin))
	{
		adminGroup.GET("/stats", r.adminHandler.Stats)

		adminGroup.POST("/categories", r.adminHandler.CreateCategory)
		adminGroup.PUT("/categories/:id", r.adminHandler.UpdateCategory)
		adminGroup.DELETE("/categories/:id", r.adminHandler.DeleteCategory)

		adminGroup.POST("/sources", r.adminHandler.CreateSource)
		adminGroup.PUT("/sources/:id", r.adminHandler.UpdateSource)
		adminGroup.DELETE("/sources/:id", r.adminHandler.DeleteSource)

		adminGroup.GET("/products", r.adminHandler.ListProducts)
		adminGroup.POST("/products", r.adminHandler.CreateProduct)
		adminGroup.PUT("/products/:id", r.adminHandler.UpdateProduct)
		adminGroup.POST("/products/:id/deactivate", r.adminHandler.DeactivateProduct)
		adminGroup.DELETE("/products/:id", r.adminHandler.DeleteProduct)
		adminGroup.GET("/products/:id/prices", r.priceHandler.History)

		adminGroup.POST("/prices/bulk", r.priceHandler.BulkUpdate)

		adminGroup.GET("/ticker", r.adminHandler.GetTicker)
		adminGroup.PUT("/ticker", r.adminHandler.ReplaceTicker)
	}
}
