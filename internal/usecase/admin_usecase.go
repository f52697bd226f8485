package usecase

import (
	"context"
	"encoding/json"
	"time"

	"qimat/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Slug      string
	Name      string
	NameRu    string
	NameEn    string
	Icon      string
	SortOrder int
}

// SourceInput carries the editable fields of a source.
type SourceInput struct {
	Name string
	URL  string
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Slug             string
	Name             string
	NameRu           string
	NameEn           string
	Unit             string
	CurrencyLabel    string
	CategoryID       *int64
	SourceID         *int64
	IsActive         bool
	IsFeatured       bool
	CalculatorConfig json.RawMessage
	PriceUnits       []string
	SortOrder        int

	// InitialPrice seeds the first price record for today on creation.
	InitialPrice *decimal.Decimal
}

// AdminProductQuery lists products for the dashboard, inactive ones included.
type AdminProductQuery struct {
	CategorySlug string
	Query        string
	Page         int
	Limit        int
}

// LoginOutput is returned on successful admin login.
type LoginOutput struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AdminAuthUsecase authenticates dashboard operators.
type AdminAuthUsecase interface {
	Login(ctx context.Context, username, password string) (*LoginOutput, error)
}

// AdminCatalogUsecase manages the catalog, the ticker and dashboard statistics.
type AdminCatalogUsecase interface {
	CreateCategory(ctx context.Context, input *CategoryInput) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id int64, input *CategoryInput) (*entity.Category, error)
	// DeleteCategory fails with a conflict while products reference the category.
	DeleteCategory(ctx context.Context, id int64) error

	CreateSource(ctx context.Context, input *SourceInput) (*entity.Source, error)
	UpdateSource(ctx context.Context, id int64, input *SourceInput) (*entity.Source, error)
	// DeleteSource fails with a conflict while products reference the source.
	DeleteSource(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, query *AdminProductQuery) (*ProductPage, error)
	CreateProduct(ctx context.Context, input *ProductInput) (*entity.ProductWithPrice, error)
	UpdateProduct(ctx context.Context, id int64, input *ProductInput) (*entity.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
	// DeleteProduct fails with a conflict when the product has price history.
	DeleteProduct(ctx context.Context, id int64) error

	GetTicker(ctx context.Context) ([]*entity.TickerItem, error)
	// ReplaceTicker sets the ticker to productIDs in the given order.
	ReplaceTicker(ctx context.Context, productIDs []int64) ([]*entity.TickerItem, error)

	Stats(ctx context.Context) (*entity.CatalogStats, error)
}
