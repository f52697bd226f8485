package repository

import (
	"context"

	"qimat/internal/domain/entity"
	"qimat/internal/errors"
)

// Domain-specific errors for category persistence.
var (
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrDuplicateCategorySlug is returned when the category slug is already taken.
	ErrDuplicateCategorySlug = errors.New("category slug already exists")
)

// CategoryRepository defines the interface for category-related database operations.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *entity.Category) error
	UpdateCategory(ctx context.Context, category *entity.Category) error
	FindCategoryByID(ctx context.Context, id int64) (*entity.Category, error)
	// FindCategories lists all categories ordered by sort order then name.
	FindCategories(ctx context.Context) ([]*entity.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountCategories(ctx context.Context) (int64, error)
}
