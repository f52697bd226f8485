package postgres

import (
	"context"

	"qimat/internal/domain/entity"
	"qimat/internal/domain/repository"
	"qimat/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type tickerRepository struct {
	db *gorm.DB
}

// NewTickerRepository is the constructor for tickerRepository.
func NewTickerRepository(db *gorm.DB) repository.TickerRepository {
	return &tickerRepository{db: db}
}

func (repo *tickerRepository) FindTickerItems(ctx context.Context) ([]*entity.TickerItem, error) {
	var itemModels []*model.TickerItemModel

	if err := repo.db.WithContext(ctx).Order("position ASC").Find(&itemModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find ticker items")
	}

	items := make([]*entity.TickerItem, 0, len(itemModels))
	for _, itemM := range itemModels {
		items = append(items, &entity.TickerItem{
			Position:  itemM.Position,
			ProductID: itemM.ProductID,
		})
	}

	return items, nil
}

// ReplaceTickerItems deletes the current ticker and writes items in their given positions.
// Callers wrap it in a transaction so readers never see an empty ticker.
func (repo *tickerRepository) ReplaceTickerItems(ctx context.Context, items []*entity.TickerItem) error {
	db := repo.db.WithContext(ctx)

	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.TickerItemModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear ticker items")
	}

	if len(items) == 0 {
		return nil
	}

	itemModels := make([]*model.TickerItemModel, 0, len(items))
	for _, item := range items {
		itemModels = append(itemModels, &model.TickerItemModel{
			Position:  item.Position,
			ProductID: item.ProductID,
		})
	}

	if err := db.Create(&itemModels).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrProductNotFound
		}

		return errors.Wrap(err, "failed to save ticker items")
	}

	return nil
}
