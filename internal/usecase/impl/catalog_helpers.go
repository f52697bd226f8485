package impl

import (
	"context"
	"strings"
	"time"

	"qimat/config"

	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"

	"github.com/pkg/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxHistoryDays   = 365
)

// pageBounds normalizes a 1-based page and a limit into limit and offset.
func pageBounds(page, limit int) (normalizedPage, normalizedLimit, offset int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit, (page - 1) * limit
}

// normalizeSlug lowercases and trims a slug.
func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// attachPrices enriches products with their two most recent price records.
func attachPrices(ctx context.Context, priceRepo repository.PriceRepository, products []*entity.Product) ([]*entity.ProductWithPrice, error) {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	latest, err := priceRepo.FindLatestByProducts(ctx, ids, 2)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load latest prices")
	}

	items := make([]*entity.ProductWithPrice, 0, len(products))
	for _, p := range products {
		items = append(items, withPrices(p, latest[p.ID]))
	}

	return items, nil
}

// withPrices builds a ProductWithPrice from records sorted newest first.
func withPrices(product *entity.Product, records []*entity.PriceRecord) *entity.ProductWithPrice {
	item := &entity.ProductWithPrice{Product: *product}
	if len(records) == 0 {
		return item
	}

	current := records[0].Price
	date := records[0].Date
	item.CurrentPrice = &current
	item.PriceDate = &date

	if len(records) > 1 {
		previous := records[1].Price
		change := entity.ChangePercent(previous, current)
		item.PreviousPrice = &previous
		item.ChangePercent = &change
	}

	return item
}

// mapRepoError converts repository sentinels into AppErrors. Unknown errors are wrapped with msg.
func mapRepoError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrProductNotFound):
		return domainerrors.ErrProductNotFound
	case errors.Is(err, repository.ErrCategoryNotFound):
		return domainerrors.ErrCategoryNotFound
	case errors.Is(err, repository.ErrSourceNotFound):
		return domainerrors.ErrSourceNotFound
	case errors.Is(err, repository.ErrPushSubscriptionNotFound):
		return domainerrors.ErrSubscriptionNotFound
	case errors.Is(err, repository.ErrDuplicateProductSlug), errors.Is(err, repository.ErrDuplicateCategorySlug):
		return domainerrors.ErrSlugTaken
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return errors.Wrap(err, msg)
}

// priceLocation resolves the timezone that defines "today" for prices. Unknown zones fall back to UTC.
func priceLocation(cfg *config.Config) (*time.Location, error) {
	if cfg == nil || cfg.Prices == nil || cfg.Prices.Timezone == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(cfg.Prices.Timezone)
	if err != nil {
		return time.UTC, errors.Wrapf(err, "load timezone %q", cfg.Prices.Timezone)
	}

	return loc, nil
}
