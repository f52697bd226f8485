package handler

import (
	"qimat/internal/delivery/api/response"
	"qimat/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// CatalogHandlerParams holds dependencies for CatalogHandler, injected by Fx.
type CatalogHandlerParams struct {
	fx.In

	CatalogUC usecase.CatalogUsecase
}

// CatalogHandler serves the public storefront endpoints.
type CatalogHandler struct {
	catalogUC usecase.CatalogUsecase
}

// NewCatalogHandler is the constructor for CatalogHandler.
func NewCatalogHandler(params CatalogHandlerParams) *CatalogHandler {
	return &CatalogHandler{catalogUC: params.CatalogUC}
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogUC.ListCategories(c.Request().Context())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, categories)
}

// ListSources handles GET /api/sources.
func (h *CatalogHandler) ListSources(c echo.Context) error {
	sources, err := h.catalogUC.ListSources(c.Request().Context())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, sources)
}

// ListProducts handles GET /api/products?category=&q=&featured=&page=&limit=.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	page, err := h.catalogUC.ListProducts(c.Request().Context(), &usecase.ProductQuery{
		CategorySlug: c.QueryParam("category"),
		Query:        c.QueryParam("q"),
		FeaturedOnly: c.QueryParam("featured") == "true" || c.QueryParam("featured") == "1",
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 0),
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, page)
}

// GetProduct handles GET /api/products/:slug?days=.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	detail, err := h.catalogUC.GetProduct(c.Request().Context(), c.Param("slug"), queryInt(c, "days", 0))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, detail)
}

// GetTicker handles GET /api/ticker.
func (h *CatalogHandler) GetTicker(c echo.Context) error {
	items, err := h.catalogUC.GetTicker(c.Request().Context())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, items)
}
