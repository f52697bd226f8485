package handler

import (
	"encoding/json"

	"qimat/internal/delivery/api/response"
	"qimat/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// PriceHandlerParams holds dependencies for PriceHandler, injected by Fx.
type PriceHandlerParams struct {
	fx.In

	PriceUC usecase.PriceUsecase
}

// PriceHandler serves the admin price ledger endpoints.
type PriceHandler struct {
	priceUC usecase.PriceUsecase
}

// NewPriceHandler is the constructor for PriceHandler.
func NewPriceHandler(params PriceHandlerParams) *PriceHandler {
	return &PriceHandler{priceUC: params.PriceUC}
}

// PriceUpdateRequest is one entry of a bulk submission. Price is kept raw so a
// malformed value rejects only its own entry; range checks happen in the use case.
type PriceUpdateRequest struct {
	ProductID int64           `json:"productId"`
	Price     json.RawMessage `json:"price"`
}

// toPriceUpdate parses the price as a JSON number or numeric string.
func (r PriceUpdateRequest) toPriceUpdate() usecase.PriceUpdate {
	update := usecase.PriceUpdate{ProductID: r.ProductID}
	if len(r.Price) == 0 {
		return update
	}

	var price decimal.Decimal
	if err := price.UnmarshalJSON(r.Price); err != nil {
		update.Malformed = true

		return update
	}
	update.Price = price

	return update
}

// BulkPriceRequest represents the bulk price submission body
type BulkPriceRequest struct {
	Date    string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Updates []PriceUpdateRequest `json:"updates" validate:"required,min=1,max=1000"`
}

// BulkUpdate handles POST /api/admin/prices/bulk.
func (h *PriceHandler) BulkUpdate(c echo.Context) error {
	var req BulkPriceRequest
	if ok, err := bindAndValidate(c, &req, "Invalid price input"); !ok {
		return err
	}

	updates := make([]usecase.PriceUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, u.toPriceUpdate())
	}

	result, err := h.priceUC.BulkUpdatePrices(c.Request().Context(), &usecase.BulkPriceInput{
		Date:    req.Date,
		Updates: updates,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, result)
}

// History handles GET /api/admin/products/:id/prices?days=.
func (h *PriceHandler) History(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return response.Invalid(c, "INVALID_ID", "Invalid product ID")
	}

	records, err := h.priceUC.GetPriceHistory(c.Request().Context(), id, queryInt(c, "days", 0))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.OK(c, records)
}
