package repository

import (
	"context"
	"time"

	"qimat/internal/domain/entity"
	"qimat/internal/errors"
)

// ErrPriceNotFound is returned when a product has no price record in the requested range.
var ErrPriceNotFound = errors.New("price record not found")

// PriceRepository defines the price ledger: per-product, per-date price records.
// The current price of a product is its most recent record.
type PriceRepository interface {
	// FindLatestOnOrBefore returns the most recent record with date <= the given date.
	FindLatestOnOrBefore(ctx context.Context, productID int64, date time.Time) (*entity.PriceRecord, error)

	// UpsertPrice writes the record for (ProductID, Date), overwriting the price of an existing one.
	UpsertPrice(ctx context.Context, record *entity.PriceRecord) error

	// FindHistory returns the records of a product dated on or after since, newest first.
	FindHistory(ctx context.Context, productID int64, since time.Time) ([]*entity.PriceRecord, error)

	// FindLatestByProducts returns up to perProduct newest records for each product, newest first.
	FindLatestByProducts(ctx context.Context, productIDs []int64, perProduct int) (map[int64][]*entity.PriceRecord, error)

	// CountByProduct returns how many records reference the product.
	CountByProduct(ctx context.Context, productID int64) (int64, error)

	// CountByDate returns how many records were written for the given day.
	CountByDate(ctx context.Context, date time.Time) (int64, error)
}
