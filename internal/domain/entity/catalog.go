// Package entity contains the core business objects of the project.
package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products on the storefront (groceries, phones, currencies, fuel).
type Category struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	NameRu    string    `json:"name_ru,omitempty"`
	NameEn    string    `json:"name_en,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Source is where a price was observed, e.g. a market or a bank.
type Source struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a tracked item in the catalog.
type Product struct {
	ID               int64           `json:"id"`                          // Stable surrogate key.
	Slug             string          `json:"slug"`                        // URL-safe unique identifier.
	Name             string          `json:"name"`                        // Default (Uzbek) display name.
	NameRu           string          `json:"name_ru,omitempty"`           // Russian display name.
	NameEn           string          `json:"name_en,omitempty"`           // English display name.
	Unit             string          `json:"unit"`                        // Unit the price refers to, e.g. "kg".
	CurrencyLabel    string          `json:"currency_label"`              // Label shown next to the price, e.g. "so'm".
	CategoryID       *int64          `json:"category_id,omitempty"`       // Optional category reference.
	SourceID         *int64          `json:"source_id,omitempty"`         // Optional source reference.
	IsActive         bool            `json:"is_active"`                   // Inactive products are hidden from the storefront.
	IsFeatured       bool            `json:"is_featured"`                 // Featured products are highlighted on the home page.
	CalculatorConfig json.RawMessage `json:"calculator_config,omitempty"` // Opaque calculator settings for the client.
	PriceUnits       []string        `json:"price_units,omitempty"`       // Units the client may convert the price to.
	SortOrder        int             `json:"sort_order"`                  // Display order inside a category.
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductWithPrice is a product enriched with its two most recent observations.
type ProductWithPrice struct {
	Product

	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"`
	PreviousPrice *decimal.Decimal `json:"previous_price,omitempty"`
	PriceDate     *time.Time       `json:"price_date,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategorySlug    string
	Query           string
	FeaturedOnly    bool
	IncludeInactive bool
	Limit           int
	Offset          int
}

// TickerItem places a product at a position in the public price ticker.
type TickerItem struct {
	Position  int   `json:"position"`
	ProductID int64 `json:"product_id"`
}

// CatalogStats aggregates counters for the admin dashboard.
type CatalogStats struct {
	Products            int64 `json:"products"`
	ActiveProducts      int64 `json:"active_products"`
	Categories          int64 `json:"categories"`
	Sources             int64 `json:"sources"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	PricesToday         int64 `json:"prices_today"`
}
