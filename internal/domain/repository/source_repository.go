package repository

import (
	"context"

	"qimat/internal/domain/entity"
	"qimat/internal/errors"
)

// ErrSourceNotFound is returned when a source is not found.
var ErrSourceNotFound = errors.New("source not found")

// SourceRepository defines the interface for price source database operations.
type SourceRepository interface {
	CreateSource(ctx context.Context, source *entity.Source) error
	UpdateSource(ctx context.Context, source *entity.Source) error
	FindSourceByID(ctx context.Context, id int64) (*entity.Source, error)
	FindSources(ctx context.Context) ([]*entity.Source, error)
	DeleteSource(ctx context.Context, id int64) error
	CountSources(ctx context.Context) (int64, error)
}
