// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"qimat/config"
	deliverycontext "qimat/internal/delivery/context"
	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/infra/metrics"
	"qimat/internal/usecase"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const rejectReasonInternal = "InternalError"

// maxPrice is the exclusive upper bound of a numeric(14,2) column.
var maxPrice = decimal.New(1, 12)

// priceService implements the PriceUsecase interface.
type priceService struct {
	txManager   repository.TransactionManager
	productRepo repository.ProductRepository
	priceRepo   repository.PriceRepository
	push        usecase.PushUsecase
	metrics     *metrics.PriceMetrics
	location    *time.Location
	historyDays int
	now         func() time.Time
	logger      *slog.Logger
}

// PriceServiceParams holds dependencies for PriceService, injected by Fx.
type PriceServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProductRepo repository.ProductRepository
	PriceRepo   repository.PriceRepository
	Push        usecase.PushUsecase
	Metrics     *metrics.PriceMetrics `optional:"true"`
	Config      *config.Config
	Logger      *slog.Logger
}

// NewPriceService is the constructor for priceService.
func NewPriceService(params PriceServiceParams) usecase.PriceUsecase {
	location, err := priceLocation(params.Config)
	if err != nil && params.Logger != nil {
		params.Logger.Warn("Unknown price timezone, falling back to UTC", slog.Any("error", err))
	}

	historyDays := 30
	if params.Config != nil && params.Config.Prices != nil && params.Config.Prices.HistoryDays > 0 {
		historyDays = params.Config.Prices.HistoryDays
	}

	return &priceService{
		txManager:   params.TxManager,
		productRepo: params.ProductRepo,
		priceRepo:   params.PriceRepo,
		push:        params.Push,
		metrics:     params.Metrics,
		location:    location,
		historyDays: historyDays,
		now:         time.Now,
		logger:      params.Logger,
	}
}

func (srv *priceService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOr(ctx, srv.logger)
}

// today returns the current calendar day in the configured timezone.
func (srv *priceService) today() time.Time {
	return entity.NormalizeDate(srv.now().In(srv.location))
}

// BulkUpdatePrices applies each entry in its own transaction, then dispatches the change events.
func (srv *priceService) BulkUpdatePrices(ctx context.Context, input *usecase.BulkPriceInput) (*usecase.BulkPriceResult, error) {
	if input == nil || len(input.Updates) == 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("updates must not be empty")
	}

	date := srv.today()
	if input.Date != "" {
		parsed, err := entity.ParseDate(input.Date)
		if err != nil {
			return nil, domainerrors.ErrValidationFailed.WithDetails("date must be formatted as YYYY-MM-DD")
		}
		date = parsed
	}

	result := &usecase.BulkPriceResult{
		Date:           date.Format(entity.DateLayout),
		ChangedUpdates: []usecase.ChangedUpdate{},
		Rejected:       []usecase.RejectedUpdate{},
	}

	var events []*entity.PriceChangeEvent
	for _, update := range input.Updates {
		update.Price = update.Price.Round(2)
		if reason, msg := validatePriceUpdate(update); reason != "" {
			srv.reject(result, update.ProductID, reason, msg)

			continue
		}

		event, err := srv.applyUpdate(ctx, date, update)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				srv.reject(result, update.ProductID, usecase.RejectReasonNotFound, "product not found")

				continue
			}

			srv.log(ctx).Error("Failed to apply price update",
				slog.Int64("productId", update.ProductID),
				slog.Any("error", err),
			)
			srv.reject(result, update.ProductID, rejectReasonInternal, "failed to store price")

			continue
		}

		result.AppliedCount++
		if event != nil {
			events = append(events, event)
			result.ChangedUpdates = append(result.ChangedUpdates, usecase.ChangedUpdate{
				ProductID:     event.ProductID,
				ProductName:   event.ProductName,
				OldPrice:      event.OldPrice,
				NewPrice:      event.NewPrice,
				CurrencyLabel: event.CurrencyLabel,
			})
		}
	}

	srv.metrics.AddApplied(result.AppliedCount)
	srv.metrics.AddChanged(len(events))

	srv.log(ctx).Info("Bulk price update applied",
		slog.String("date", result.Date),
		slog.Int("applied", result.AppliedCount),
		slog.Int("changed", len(events)),
		slog.Int("rejected", len(result.Rejected)),
	)

	// Deliveries and prunes outlive an admin who disconnects mid-request.
	srv.dispatch(context.WithoutCancel(ctx), events, &result.Notifications)

	return result, nil
}

// applyUpdate stores one validated, rounded price and returns the change event,
// or nil when the price is new or unchanged.
func (srv *priceService) applyUpdate(ctx context.Context, date time.Time, update usecase.PriceUpdate) (*entity.PriceChangeEvent, error) {
	price := update.Price

	var event *entity.PriceChangeEvent
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.NewProductRepository()
		priceRepo := repoFactory.NewPriceRepository()

		product, err := productRepo.FindProductByID(ctx, update.ProductID)
		if err != nil {
			return err
		}

		prior, err := priceRepo.FindLatestOnOrBefore(ctx, product.ID, date)
		if err != nil && !errors.Is(err, repository.ErrPriceNotFound) {
			return errors.Wrap(err, "failed to find prior price")
		}

		if err := priceRepo.UpsertPrice(ctx, &entity.PriceRecord{
			ProductID: product.ID,
			Date:      date,
			Price:     price,
		}); err != nil {
			return err
		}

		if prior != nil && !prior.Price.Equal(price) {
			event = &entity.PriceChangeEvent{
				ProductID:     product.ID,
				ProductSlug:   product.Slug,
				ProductName:   product.Name,
				OldPrice:      prior.Price,
				NewPrice:      price,
				CurrencyLabel: product.CurrencyLabel,
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// dispatch notifies subscribers of each change. Failures are logged and never returned.
func (srv *priceService) dispatch(ctx context.Context, events []*entity.PriceChangeEvent, summary *usecase.DispatchResult) {
	if srv.push == nil {
		return
	}

	for _, event := range events {
		res, err := srv.push.DispatchPriceChange(ctx, event)
		if err != nil {
			srv.log(ctx).Warn("Price change dispatch failed",
				slog.Int64("productId", event.ProductID),
				slog.Any("error", err),
			)

			continue
		}
		summary.Add(res)
	}
}

func (srv *priceService) reject(result *usecase.BulkPriceResult, productID int64, reason, msg string) {
	srv.metrics.IncRejected(reason)
	result.Rejected = append(result.Rejected, usecase.RejectedUpdate{
		ProductID: productID,
		Reason:    reason,
		Message:   msg,
	})
}

// validatePriceUpdate checks an entry whose price is already rounded to cents,
// so sub-cent amounts are rejected as non-positive.
func validatePriceUpdate(update usecase.PriceUpdate) (reason, msg string) {
	switch {
	case update.ProductID <= 0:
		return usecase.RejectReasonValidation, "productId must be positive"
	case update.Malformed:
		return usecase.RejectReasonValidation, "price must be a number"
	case !update.Price.IsPositive():
		return usecase.RejectReasonValidation, "price must be positive"
	case update.Price.GreaterThanOrEqual(maxPrice):
		return usecase.RejectReasonValidation, "price is too large"
	}

	return "", ""
}

// GetPriceHistory returns the price records of a product for the last days days.
func (srv *priceService) GetPriceHistory(ctx context.Context, productID int64, days int) ([]*entity.PriceRecord, error) {
	if productID <= 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("product id must be positive")
	}

	if _, err := srv.productRepo.FindProductByID(ctx, productID); err != nil {
		return nil, mapRepoError(err, "failed to find product")
	}

	records, err := srv.priceRepo.FindHistory(ctx, productID, historySince(srv.today(), days, srv.historyDays))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load price history")
	}

	return records, nil
}

// historySince returns the first day of a window of days days ending today.
func historySince(today time.Time, days, fallback int) time.Time {
	if days <= 0 {
		days = fallback
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	return today.AddDate(0, 0, -(days - 1))
}
