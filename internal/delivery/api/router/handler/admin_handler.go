package handler

import (
	"encoding/json"
	"log/slog"

	"qimat/internal/delivery/api/response"
	"qimat/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// AdminHandlerParams holds dependencies for AdminHandler, injected by Fx.
type AdminHandlerParams struct {
	fx.In

	AuthUC    usecase.AdminAuthUsecase
	CatalogUC usecase.AdminCatalogUsecase
	Logger    *slog.Logger
}

// AdminHandler serves the dashboard endpoints under /api/admin.
type AdminHandler struct {
	authUC    usecase.AdminAuthUsecase
	catalogUC usecase.AdminCatalogUsecase
	logger    *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler.
func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	return &AdminHandler{
		authUC:    params.AuthUC,
		catalogUC: params.CatalogUC,
		logger:    params.Logger,
	}
}

// LoginRequest represents the admin login body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CategoryRequest represents a category create or update body
type CategoryRequest struct {
	Slug      string `json:"slug" validate:"required,max=100"`
	Name      string `json:"name" validate:"required,max=200"`
	NameRu    string `json:"nameRu" validate:"max=200"`
	NameEn    string `json:"nameEn" validate:"max=200"`
	Icon      string `json:"icon" validate:"max=200"`
	SortOrder int    `json:"sortOrder"`
}

// SourceRequest represents a source create or update body
type SourceRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	URL  string `json:"url" validate:"omitempty,url"`
}

// ProductRequest represents a product create or update body
type ProductRequest struct {
	Slug             string           `json:"slug" validate:"required,max=150"`
	Name             string           `json:"name" validate:"required,max=200"`
	NameRu           string           `json:"nameRu" validate:"max=200"`
	NameEn           string           `json:"nameEn" validate:"max=200"`
	Unit             string           `json:"unit" validate:"max=50"`
	CurrencyLabel    string           `json:"currencyLabel" validate:"max=50"`
	CategoryID       *int64           `json:"categoryId" validate:"omitempty,gt=0"`
	SourceID         *int64           `json:"sourceId" validate:"omitempty,gt=0"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       bool             `json:"isFeatured"`
	CalculatorConfig json.RawMessage  `json:"calculatorConfig"`
	PriceUnits       []string         `json:"priceUnits" validate:"max=20,dive,max=50"`
	SortOrder        int              `json:"sortOrder"`
	InitialPrice     *decimal.Decimal `json:"initialPrice"`
}

func (r *ProductRequest) toInput() *usecase.ProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return &usecase.ProductInput{
		Slug:             r.Slug,
		Name:             r.Name,
		NameRu:           r.NameRu,
		NameEn:           r.NameEn,
		Unit:             r.Unit,
		CurrencyLabel:    r.CurrencyLabel,
		CategoryID:       r.CategoryID,
		SourceID:         r.SourceID,
		IsActive:         active,
		IsFeatured:       r.IsFeatured,
		CalculatorConfig: r.CalculatorConfig,
		PriceUnits:       r.PriceUnits,
		SortOrder:        r.SortOrder,
		InitialPrice:     r.InitialPrice,
	}
}

// TickerRequest represents the ticker replacement body
type TickerRequest struct {
	ProductIDs []int64 `json:"productIds" validate:"max=100,dive,gt=0"`
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var req LoginRequest
	if ok, err := bindAndValidate(c, &req, "Invalid login input"); !ok {
		return err
	}

	out, err := h.authUC.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, out)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.catalogUC.Stats(c.Request().Context())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, stats)
}

// CreateCategory handles POST /api/admin/categories.
func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if ok, err := bindAndValidate(c, &req, "Invalid category input"); !ok {
		return err
	}

	category, err := h.catalogUC.CreateCategory(c.Request().Context(), req.toInput())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, category)
}

// UpdateCategory handles PUT /api/admin/categories/:id.
func (h *AdminHandler) UpdateCategory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid category ID")
	}

	var req CategoryRequest
	if ok, err := bindAndValidate(c, &req, "Invalid category input"); !ok {
		return err
	}

	category, err := h.catalogUC.UpdateCategory(c.Request().Context(), id, req.toInput())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, category)
}

// DeleteCategory handles DELETE /api/admin/categories/:id.
func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid category ID")
	}

	if err := h.catalogUC.DeleteCategory(c.Request().Context(), id); err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, successResult{Success: true})
}

func (r *CategoryRequest) toInput() *usecase.CategoryInput {
	return &usecase.CategoryInput{
		Slug:      r.Slug,
		Name:      r.Name,
		NameRu:    r.NameRu,
		NameEn:    r.NameEn,
		Icon:      r.Icon,
		SortOrder: r.SortOrder,
	}
}

// CreateSource handles POST /api/admin/sources.
func (h *AdminHandler) CreateSource(c echo.Context) error {
	var req SourceRequest
	if ok, err := bindAndValidate(c, &req, "Invalid source input"); !ok {
		return err
	}

	source, err := h.catalogUC.CreateSource(c.Request().Context(), &usecase.SourceInput{Name: req.Name, URL: req.URL})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, source)
}

// UpdateSource handles PUT /api/admin/sources/:id.
func (h *AdminHandler) UpdateSource(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid source ID")
	}

	var req SourceRequest
	if ok, err := bindAndValidate(c, &req, "Invalid source input"); !ok {
		return err
	}

	source, err := h.catalogUC.UpdateSource(c.Request().Context(), id, &usecase.SourceInput{Name: req.Name, URL: req.URL})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, source)
}

// DeleteSource handles DELETE /api/admin/sources/:id.
func (h *AdminHandler) DeleteSource(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid source ID")
	}

	if err := h.catalogUC.DeleteSource(c.Request().Context(), id); err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, successResult{Success: true})
}

// ListProducts handles GET /api/admin/products?category=&q=&page=&limit=.
func (h *AdminHandler) ListProducts(c echo.Context) error {
	page, err := h.catalogUC.ListProducts(c.Request().Context(), &usecase.AdminProductQuery{
		CategorySlug: c.QueryParam("category"),
		Query:        c.QueryParam("q"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 0),
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, page)
}

// CreateProduct handles POST /api/admin/products.
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if ok, err := bindAndValidate(c, &req, "Invalid product input"); !ok {
		return err
	}

	product, err := h.catalogUC.CreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, product)
}

// UpdateProduct handles PUT /api/admin/products/:id.
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid product ID")
	}

	var req ProductRequest
	if ok, err := bindAndValidate(c, &req, "Invalid product input"); !ok {
		return err
	}

	product, err := h.catalogUC.UpdateProduct(c.Request().Context(), id, req.toInput())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, product)
}

// DeactivateProduct handles POST /api/admin/products/:id/deactivate.
func (h *AdminHandler) DeactivateProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid product ID")
	}

	if err := h.catalogUC.DeactivateProduct(c.Request().Context(), id); err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, successResult{Success: true})
}

// DeleteProduct handles DELETE /api/admin/products/:id.
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid product ID")
	}

	if err := h.catalogUC.DeleteProduct(c.Request().Context(), id); err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, successResult{Success: true})
}

// GetTicker handles GET /api/admin/ticker.
func (h *AdminHandler) GetTicker(c echo.Context) error {
	items, err := h.catalogUC.GetTicker(c.Request().Context())
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, items)
}

// ReplaceTicker handles PUT /api/admin/ticker.
func (h *AdminHandler) ReplaceTicker(c echo.Context) error {
	var req TickerRequest
	if ok, err := bindAndValidate(c, &req, "Invalid ticker input"); !ok {
		return err
	}

	items, err := h.catalogUC.ReplaceTicker(c.Request().Context(), req.ProductIDs)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, items)
}
