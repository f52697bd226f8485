// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of a price date.
const DateLayout = "2006-01-02"

// PriceRecord is one observation of a product price on a calendar day.
// There is at most one authoritative record per (ProductID, Date).
type PriceRecord struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Date      time.Time       `json:"date"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PriceChangeEvent is produced for every product whose price actually changed.
// It is never persisted.
type PriceChangeEvent struct {
	ProductID     int64           `json:"product_id"`
	ProductSlug   string          `json:"-"`
	ProductName   string          `json:"product_name"`
	OldPrice      decimal.Decimal `json:"old_price"`
	NewPrice      decimal.Decimal `json:"new_price"`
	CurrencyLabel string          `json:"currency_label,omitempty"`
}

// ChangePercent returns the signed percentage change from OldPrice to NewPrice,
// rounded to two decimals. A zero old price yields zero.
func (e *PriceChangeEvent) ChangePercent() decimal.Decimal {
	return ChangePercent(e.OldPrice, e.NewPrice)
}

// ChangePercent returns (newPrice-oldPrice)/oldPrice*100 rounded to two decimals.
func ChangePercent(oldPrice, newPrice decimal.Decimal) decimal.Decimal {
	if oldPrice.IsZero() {
		return decimal.Zero
	}

	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// NormalizeDate truncates t to a calendar day in its own location and
// re-expresses that day as UTC midnight, the canonical storage form.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into its canonical UTC midnight form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}

	return NormalizeDate(t), nil
}
