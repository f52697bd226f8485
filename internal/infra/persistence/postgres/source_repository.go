package postgres

import (
	"context"

	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type sourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository is the constructor for sourceRepository.
func NewSourceRepository(db *gorm.DB) repository.SourceRepository {
	return &sourceRepository{db: db}
}

func (repo *sourceRepository) CreateSource(ctx context.Context, source *entity.Source) error {
	sourceM := fromSourceDomain(source)

	if err := repo.db.WithContext(ctx).Create(sourceM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create source")
	}

	source.ID = sourceM.ID
	source.CreatedAt = sourceM.CreatedAt
	source.UpdatedAt = sourceM.UpdatedAt

	return nil
}

func (repo *sourceRepository) UpdateSource(ctx context.Context, source *entity.Source) error {
	sourceM := fromSourceDomain(source)

	result := repo.db.WithContext(ctx).
		Model(&model.SourceModel{ID: source.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(sourceM)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update source")
	}

	if result.RowsAffected == 0 {
		return repository.ErrSourceNotFound
	}

	source.UpdatedAt = sourceM.UpdatedAt

	return nil
}

func (repo *sourceRepository) FindSourceByID(ctx context.Context, id int64) (*entity.Source, error) {
	var sourceM model.SourceModel

	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&sourceM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSourceNotFound
		}

		return nil, errors.Wrap(err, "failed to find source by ID")
	}

	return toSourceDomain(&sourceM), nil
}

func (repo *sourceRepository) FindSources(ctx context.Context) ([]*entity.Source, error) {
	var sourceModels []*model.SourceModel

	if err := repo.db.WithContext(ctx).Order("name ASC").Find(&sourceModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find sources")
	}

	sources := make([]*entity.Source, 0, len(sourceModels))
	for _, sourceM := range sourceModels {
		sources = append(sources, toSourceDomain(sourceM))
	}

	return sources, nil
}

func (repo *sourceRepository) DeleteSource(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.SourceModel{})

	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return domainerrors.ErrSourceInUse
		}

		return errors.Wrap(result.Error, "failed to delete source")
	}

	if result.RowsAffected == 0 {
		return repository.ErrSourceNotFound
	}

	return nil
}

func (repo *sourceRepository) CountSources(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.SourceModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count sources")
	}

	return count, nil
}

// --- Mapper Functions ---

func toSourceDomain(data *model.SourceModel) *entity.Source {
	if data == nil {
		return nil
	}

	return &entity.Source{
		ID:        data.ID,
		Name:      data.Name,
		URL:       data.URL,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromSourceDomain(data *entity.Source) *model.SourceModel {
	if data == nil {
		return nil
	}

	return &model.SourceModel{
		ID:        data.ID,
		Name:      data.Name,
		URL:       data.URL,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
