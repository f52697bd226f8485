package usecase

import (
	"context"

	"qimat/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Rejection reasons reported for single bulk entries.
const (
	RejectReasonValidation = "ValidationError"
	RejectReasonNotFound   = "NotFoundError"
)

// PriceUpdate is one {productId, price} entry of a bulk submission.
// Malformed marks an entry whose price could not be parsed as a number.
type PriceUpdate struct {
	ProductID int64           `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	Malformed bool            `json:"-"`
}

// BulkPriceInput is a batch of price updates for a single calendar day.
type BulkPriceInput struct {
	// Date is YYYY-MM-DD. Empty means today in the configured price timezone.
	Date    string
	Updates []PriceUpdate
}

// RejectedUpdate reports why an entry was not applied.
type RejectedUpdate struct {
	ProductID int64  `json:"productId"`
	Reason    string `json:"reason"`
	Message   string `json:"message,omitempty"`
}

// ChangedUpdate is the wire form of a PriceChangeEvent.
type ChangedUpdate struct {
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName"`
	OldPrice      decimal.Decimal `json:"oldPrice"`
	NewPrice      decimal.Decimal `json:"newPrice"`
	CurrencyLabel string          `json:"currencyLabel,omitempty"`
}

// BulkPriceResult is the outcome of a bulk submission.
type BulkPriceResult struct {
	Date           string           `json:"date"`
	AppliedCount   int              `json:"appliedCount"`
	ChangedUpdates []ChangedUpdate  `json:"changedUpdates"`
	Rejected       []RejectedUpdate `json:"rejected"`
	Notifications  DispatchResult   `json:"notifications"`
}

// PriceUsecase owns the transition from submitted prices to persisted records and change events.
type PriceUsecase interface {
	// BulkUpdatePrices applies every valid entry, rejects the rest and notifies subscribers of changes.
	BulkUpdatePrices(ctx context.Context, input *BulkPriceInput) (*BulkPriceResult, error)

	// GetPriceHistory returns the records of a product for the last days days, newest first.
	GetPriceHistory(ctx context.Context, productID int64, days int) ([]*entity.PriceRecord, error)
}
