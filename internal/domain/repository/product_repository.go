// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"qimat/internal/domain/entity"
	"qimat/internal/errors"
)

// Domain-specific errors for product persistence.
var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateProductSlug is returned when the product slug is already taken.
	ErrDuplicateProductSlug = errors.New("product slug already exists")
)

// ProductRepository defines the interface for product-related database operations.
type ProductRepository interface {
	// CreateProduct persists a new product and fills its generated fields.
	CreateProduct(ctx context.Context, product *entity.Product) error

	// UpdateProduct overwrites the editable fields of an existing product.
	UpdateProduct(ctx context.Context, product *entity.Product) error

	// FindProductByID retrieves a product by its surrogate key, active or not.
	FindProductByID(ctx context.Context, id int64) (*entity.Product, error)

	// FindProductBySlug retrieves a product by its slug, active or not.
	FindProductBySlug(ctx context.Context, slug string) (*entity.Product, error)

	// FindProducts lists products matching the filter and returns the total before paging.
	FindProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int64, error)

	// FindProductsByIDs retrieves the products with the given ids, in no particular order.
	FindProductsByIDs(ctx context.Context, ids []int64) ([]*entity.Product, error)

	// SetProductActive flips the active flag.
	SetProductActive(ctx context.Context, id int64, active bool) error

	// DeleteProduct physically removes a product.
	DeleteProduct(ctx context.Context, id int64) error

	// CountProducts returns the number of all and of active products.
	CountProducts(ctx context.Context) (total, active int64, err error)

	// CountProductsByCategory returns how many products reference the category.
	CountProductsByCategory(ctx context.Context, categoryID int64) (int64, error)

	// CountProductsBySource returns how many products reference the source.
	CountProductsBySource(ctx context.Context, sourceID int64) (int64, error)
}
