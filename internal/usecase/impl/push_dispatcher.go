package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"qimat/config"
	deliverycontext "qimat/internal/delivery/context"
	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/domain/service"
	"qimat/internal/infra/metrics"
	"qimat/internal/usecase"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDispatchConcurrency = 16
	defaultDeliveryTimeout     = 10 * time.Second
)

// pushService implements the PushUsecase interface.
type pushService struct {
	subscriptionRepo repository.PushSubscriptionRepository
	sender           service.PushSender
	site             config.SiteConfig
	concurrency      int
	timeout          time.Duration
	metrics          *metrics.PushMetrics
	logger           *slog.Logger
}

// PushServiceParams holds dependencies for PushService, injected by Fx.
// Sender is nil when Web Push is not configured.
type PushServiceParams struct {
	fx.In

	SubscriptionRepo repository.PushSubscriptionRepository
	Sender           service.PushSender   `optional:"true"`
	Metrics          *metrics.PushMetrics `optional:"true"`
	Config           *config.Config
	Logger           *slog.Logger
}

// NewPushService is the constructor for pushService.
func NewPushService(params PushServiceParams) usecase.PushUsecase {
	srv := &pushService{
		subscriptionRepo: params.SubscriptionRepo,
		sender:           params.Sender,
		concurrency:      defaultDispatchConcurrency,
		timeout:          defaultDeliveryTimeout,
		metrics:          params.Metrics,
		logger:           params.Logger,
	}

	if params.Config != nil {
		if params.Config.Site != nil {
			srv.site = *params.Config.Site
		}
		if wp := params.Config.WebPush; wp != nil {
			if wp.Concurrency > 0 {
				srv.concurrency = wp.Concurrency
			}
			if wp.Timeout > 0 {
				srv.timeout = wp.Timeout
			}
		}
	}

	return srv
}

func (srv *pushService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOr(ctx, srv.logger)
}

// DispatchPriceChange fans the change out to every interested subscription.
// Endpoints reported gone are deleted after all deliveries finished.
func (srv *pushService) DispatchPriceChange(ctx context.Context, event *entity.PriceChangeEvent) (*usecase.DispatchResult, error) {
	if event == nil || event.ProductID <= 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("price change event requires a product id")
	}

	if srv.sender == nil {
		srv.log(ctx).Info("Push dispatch skipped", slog.Int64("productId", event.ProductID), slog.String("reason", service.ErrPushNotConfigured.Error()))

		return &usecase.DispatchResult{Reason: service.ErrPushNotConfigured.Error()}, nil
	}

	started := time.Now()
	defer func() { srv.metrics.ObserveDispatch(time.Since(started)) }()

	subscriptions, err := srv.subscriptionRepo.FindActiveByProduct(ctx, event.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions for product")
	}
	if len(subscriptions) == 0 {
		return &usecase.DispatchResult{}, nil
	}

	payload, err := json.Marshal(srv.buildPayload(event))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode push payload")
	}

	var (
		mu      sync.Mutex
		result  usecase.DispatchResult
		goneEps []string
	)

	g := new(errgroup.Group)
	g.SetLimit(srv.concurrency)

	for _, sub := range subscriptions {
		g.Go(func() error {
			deliveryCtx, cancel := context.WithTimeout(ctx, srv.timeout)
			defer cancel()

			sendErr := srv.sender.Send(deliveryCtx, sub, payload)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case sendErr == nil:
				result.Sent++
			case errors.Is(sendErr, service.ErrSubscriptionGone):
				goneEps = append(goneEps, sub.Endpoint)
			default:
				result.Skipped++
				srv.log(ctx).Debug("Push delivery failed",
					slog.Int64("subscriptionId", sub.ID),
					slog.Any("error", sendErr),
				)
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "push fan-out failed")
	}

	for _, endpoint := range goneEps {
		if err := srv.subscriptionRepo.RemoveByEndpoint(ctx, endpoint); err != nil {
			result.Skipped++
			srv.log(ctx).Warn("Failed to prune gone subscription", slog.Any("error", err))

			continue
		}
		result.Pruned++
	}

	srv.metrics.AddDeliveries(metrics.OutcomeSent, result.Sent)
	srv.metrics.AddDeliveries(metrics.OutcomeSkipped, result.Skipped)
	srv.metrics.AddDeliveries(metrics.OutcomePruned, result.Pruned)

	srv.log(ctx).Info("Price change dispatched",
		slog.Int64("productId", event.ProductID),
		slog.Int("sent", result.Sent),
		slog.Int("skipped", result.Skipped),
		slog.Int("pruned", result.Pruned),
	)

	return &result, nil
}

func (srv *pushService) buildPayload(event *entity.PriceChangeEvent) *entity.PushPayload {
	change := formatChange(event.ChangePercent())
	oldPrice := event.OldPrice.String()
	newPrice := event.NewPrice.String()

	body := fmt.Sprintf("%s → %s", oldPrice, newPrice)
	if event.CurrencyLabel != "" {
		body += " " + event.CurrencyLabel
	}
	body += " (" + change + ")"

	return &entity.PushPayload{
		Title: event.ProductName,
		Body:  body,
		Icon:  srv.site.Icon,
		Badge: srv.site.Badge,
		Data: entity.PushPayloadData{
			ProductID:   event.ProductID,
			ProductName: event.ProductName,
			OldPrice:    oldPrice,
			NewPrice:    newPrice,
			Change:      change,
			URL:         productURL(srv.site.BaseURL, event.ProductSlug, event.ProductID),
		},
	}
}

// formatChange renders a percentage with an explicit sign, e.g. "+20.00%".
func formatChange(pct decimal.Decimal) string {
	sign := "+"
	if pct.IsNegative() {
		sign = "-"
	}

	return sign + pct.Abs().StringFixed(2) + "%"
}

// productURL links to the storefront page of a product.
func productURL(baseURL, slug string, productID int64) string {
	base := strings.TrimRight(baseURL, "/")
	if slug == "" {
		return base + "/?product=" + strconv.FormatInt(productID, 10)
	}

	return base + "/products/" + slug
}
