package usecase

import (
	"context"

	"qimat/internal/domain/entity"
)

// ProductQuery is a public product listing request.
type ProductQuery struct {
	CategorySlug string
	Query        string
	FeaturedOnly bool
	Page         int
	Limit        int
}

// ProductPage is one page of products with their prices.
type ProductPage struct {
	Items []*entity.ProductWithPrice `json:"items"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

// ProductDetail is a product with its recent price history.
type ProductDetail struct {
	Product *entity.ProductWithPrice `json:"product"`
	History []*entity.PriceRecord    `json:"history"`
}

// CatalogUsecase serves the public storefront.
type CatalogUsecase interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	ListSources(ctx context.Context) ([]*entity.Source, error)

	// ListProducts returns active products matching the query with current and previous prices.
	ListProducts(ctx context.Context, query *ProductQuery) (*ProductPage, error)

	// GetProduct returns an active product by slug with its history for the last days days.
	GetProduct(ctx context.Context, slug string, days int) (*ProductDetail, error)

	// GetTicker returns the ticker products in position order, skipping inactive ones.
	GetTicker(ctx context.Context) ([]*entity.ProductWithPrice, error)
}
