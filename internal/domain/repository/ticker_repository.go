package repository

import (
	"context"

	"qimat/internal/domain/entity"
)

// TickerRepository stores the ordered product list of the public price ticker.
type TickerRepository interface {
	// FindTickerItems returns the ticker items ordered by position.
	FindTickerItems(ctx context.Context) ([]*entity.TickerItem, error)

	// ReplaceTickerItems swaps the whole ticker for the given items.
	ReplaceTickerItems(ctx context.Context, items []*entity.TickerItem) error
}
