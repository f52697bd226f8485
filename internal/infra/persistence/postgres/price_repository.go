package postgres

import (
	"context"
	"time"

	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// priceRepository implements the repository.PriceRepository interface.
type priceRepository struct {
	db *gorm.DB
}

// NewPriceRepository is the constructor for priceRepository.
func NewPriceRepository(db *gorm.DB) repository.PriceRepository {
	return &priceRepository{db: db}
}

// FindLatestOnOrBefore returns the most recent record of a product dated on or before date.
func (repo *priceRepository) FindLatestOnOrBefore(ctx context.Context, productID int64, date time.Time) (*entity.PriceRecord, error) {
	var recordM model.PriceRecordModel

	if err := repo.db.WithContext(ctx).
		Where("product_id = ? AND date <= ?", productID, entity.NormalizeDate(date)).
		Order("date DESC").
		First(&recordM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPriceNotFound
		}

		return nil, errors.Wrap(err, "failed to find latest price")
	}

	return toPriceRecordDomain(&recordM), nil
}

// UpsertPrice inserts the record or overwrites the price already stored for (product, date).
func (repo *priceRepository) UpsertPrice(ctx context.Context, record *entity.PriceRecord) error {
	record.Date = entity.NormalizeDate(record.Date)
	recordM := fromPriceRecordDomain(record)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(recordM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrProductNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert price record")
	}

	record.ID = recordM.ID
	record.CreatedAt = recordM.CreatedAt
	record.UpdatedAt = recordM.UpdatedAt

	return nil
}

// FindHistory returns the records of a product dated on or after since, newest first.
func (repo *priceRepository) FindHistory(ctx context.Context, productID int64, since time.Time) ([]*entity.PriceRecord, error) {
	var recordModels []*model.PriceRecordModel

	query := repo.db.WithContext(ctx).Where("product_id = ?", productID)
	if !since.IsZero() {
		query = query.Where("date >= ?", entity.NormalizeDate(since))
	}

	if err := query.Order("date DESC").Find(&recordModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find price history")
	}

	records := make([]*entity.PriceRecord, 0, len(recordModels))
	for _, recordM := range recordModels {
		records = append(records, toPriceRecordDomain(recordM))
	}

	return records, nil
}

// FindLatestByProducts returns up to perProduct newest records for each of the products.
func (repo *priceRepository) FindLatestByProducts(ctx context.Context, productIDs []int64, perProduct int) (map[int64][]*entity.PriceRecord, error) {
	result := make(map[int64][]*entity.PriceRecord, len(productIDs))
	if len(productIDs) == 0 || perProduct <= 0 {
		return result, nil
	}

	ranked := repo.db.
		Model(&model.PriceRecordModel{}).
		Select("*, ROW_NUMBER() OVER (PARTITION BY product_id ORDER BY date DESC) AS rn").
		Where("product_id IN ?", productIDs)

	var recordModels []*model.PriceRecordModel
	if err := repo.db.WithContext(ctx).
		Table("(?) AS ranked", ranked).
		Select("id, product_id, date, price, created_at, updated_at").
		Where("rn <= ?", perProduct).
		Order("product_id ASC").
		Order("date DESC").
		Find(&recordModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find latest prices")
	}

	for _, recordM := range recordModels {
		result[recordM.ProductID] = append(result[recordM.ProductID], toPriceRecordDomain(recordM))
	}

	return result, nil
}

// CountByProduct returns how many records reference the product.
func (repo *priceRepository) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.PriceRecordModel{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count price records by product")
	}

	return count, nil
}

// CountByDate returns how many records were written for the given day.
func (repo *priceRepository) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.PriceRecordModel{}).
		Where("date = ?", entity.NormalizeDate(date)).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count price records by date")
	}

	return count, nil
}

// --- Mapper Functions ---

func toPriceRecordDomain(data *model.PriceRecordModel) *entity.PriceRecord {
	if data == nil {
		return nil
	}

	return &entity.PriceRecord{
		ID:        data.ID,
		ProductID: data.ProductID,
		Date:      entity.NormalizeDate(data.Date),
		Price:     data.Price,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromPriceRecordDomain(data *entity.PriceRecord) *model.PriceRecordModel {
	if data == nil {
		return nil
	}

	return &model.PriceRecordModel{
		ID:        data.ID,
		ProductID: data.ProductID,
		Date:      data.Date,
		Price:     data.Price,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
