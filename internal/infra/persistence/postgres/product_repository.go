// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// productRepository implements the repository.ProductRepository interface.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{
		db: db,
	}
}

// CreateProduct persists a new product.
func (repo *productRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateProductSlug
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WithDetails("invalid category or source reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// UpdateProduct overwrites the editable fields of an existing product.
func (repo *productRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{ID: product.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(productM)

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrDuplicateProductSlug
		}
		if isForeignKeyConstraintViolation(result.Error) {
			return domainerrors.ErrValidationFailed.WithDetails("invalid category or source reference")
		}

		return errors.Wrap(result.Error, "failed to update product")
	}

	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// FindProductByID retrieves a product by its surrogate key.
func (repo *productRepository) FindProductByID(ctx context.Context, id int64) (*entity.Product, error) {
	var productM model.ProductModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by ID")
	}

	return toProductDomain(&productM), nil
}

// FindProductBySlug retrieves a product by its slug.
func (repo *productRepository) FindProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var productM model.ProductModel

	if err := repo.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by slug")
	}

	return toProductDomain(&productM), nil
}

// FindProducts lists products matching the filter.
func (repo *productRepository) FindProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.ProductModel{})

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.CategorySlug != "" {
		query = query.Where("category_id IN (?)",
			repo.db.Model(&model.CategoryModel{}).Select("id").Where("slug = ?", filter.CategorySlug),
		)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(name_ru) LIKE ? OR LOWER(name_en) LIKE ? OR LOWER(slug) LIKE ?",
			like, like, like, like,
		)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count products")
	}

	var productModels []*model.ProductModel
	listQuery := query.Order("sort_order ASC").Order("name ASC").Order("id ASC")
	if filter.Limit > 0 {
		listQuery = listQuery.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		listQuery = listQuery.Offset(filter.Offset)
	}

	if err := listQuery.Find(&productModels).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to find products")
	}

	products := make([]*entity.Product, 0, len(productModels))
	for _, productM := range productModels {
		products = append(products, toProductDomain(productM))
	}

	return products, total, nil
}

// FindProductsByIDs retrieves the products with the given ids.
func (repo *productRepository) FindProductsByIDs(ctx context.Context, ids []int64) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return []*entity.Product{}, nil
	}

	var productModels []*model.ProductModel

	if err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&productModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find products by IDs")
	}

	products := make([]*entity.Product, 0, len(productModels))
	for _, productM := range productModels {
		products = append(products, toProductDomain(productM))
	}

	return products, nil
}

// SetProductActive flips the active flag of a product.
func (repo *productRepository) SetProductActive(ctx context.Context, id int64, active bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", id).
		Update("is_active", active)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update product status")
	}

	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// DeleteProduct physically removes a product.
func (repo *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ProductModel{})

	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return domainerrors.ErrProductInUse
		}

		return errors.Wrap(result.Error, "failed to delete product")
	}

	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// CountProducts returns the number of all and of active products.
func (repo *productRepository) CountProducts(ctx context.Context) (total, active int64, err error) {
	if err := repo.db.WithContext(ctx).Model(&model.ProductModel{}).Count(&total).Error; err != nil {
		return 0, 0, errors.Wrap(err, "failed to count products")
	}

	if err := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("is_active = ?", true).
		Count(&active).Error; err != nil {
		return 0, 0, errors.Wrap(err, "failed to count active products")
	}

	return total, active, nil
}

// CountProductsByCategory returns how many products reference the category.
func (repo *productRepository) CountProductsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count products by category")
	}

	return count, nil
}

// CountProductsBySource returns how many products reference the source.
func (repo *productRepository) CountProductsBySource(ctx context.Context, sourceID int64) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("source_id = ?", sourceID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count products by source")
	}

	return count, nil
}

// --- Mapper Functions ---

// toProductDomain converts a GORM ProductModel to a domain Product entity.
func toProductDomain(data *model.ProductModel) *entity.Product {
	if data == nil {
		return nil
	}

	product := &entity.Product{
		ID:            data.ID,
		Slug:          data.Slug,
		Name:          data.Name,
		NameRu:        data.NameRu,
		NameEn:        data.NameEn,
		Unit:          data.Unit,
		CurrencyLabel: data.CurrencyLabel,
		CategoryID:    data.CategoryID,
		SourceID:      data.SourceID,
		IsActive:      data.IsActive,
		IsFeatured:    data.IsFeatured,
		SortOrder:     data.SortOrder,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}

	if len(data.CalculatorConfig) > 0 {
		product.CalculatorConfig = json.RawMessage(data.CalculatorConfig)
	}
	if len(data.PriceUnits) > 0 {
		product.PriceUnits = []string(data.PriceUnits)
	}

	return product
}

// fromProductDomain converts a domain Product entity to a GORM ProductModel.
func fromProductDomain(data *entity.Product) *model.ProductModel {
	if data == nil {
		return nil
	}

	productM := &model.ProductModel{
		ID:            data.ID,
		Slug:          data.Slug,
		Name:          data.Name,
		NameRu:        data.NameRu,
		NameEn:        data.NameEn,
		Unit:          data.Unit,
		CurrencyLabel: data.CurrencyLabel,
		CategoryID:    data.CategoryID,
		SourceID:      data.SourceID,
		IsActive:      data.IsActive,
		IsFeatured:    data.IsFeatured,
		SortOrder:     data.SortOrder,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}

	if len(data.CalculatorConfig) > 0 {
		productM.CalculatorConfig = datatypes.JSON(data.CalculatorConfig)
	}
	if len(data.PriceUnits) > 0 {
		productM.PriceUnits = datatypes.NewJSONSlice(data.PriceUnits)
	}

	return productM
}
