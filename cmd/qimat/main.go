package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	_ "time/tzdata"

	"qimat/config"
	"qimat/internal/delivery"
	"qimat/internal/delivery/api"
	apimiddleware "qimat/internal/delivery/api/middleware"
	"qimat/internal/delivery/api/router/handler"
	"qimat/internal/domain/service"
	"qimat/internal/errors"
	"qimat/internal/infra/auth"
	logs "qimat/internal/infra/log"
	"qimat/internal/infra/metrics"
	"qimat/internal/infra/notification"
	"qimat/internal/infra/persistence/postgres"
	"qimat/internal/usecase/impl"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		fx.Annotate(
			metrics.NewRegistry,
			fx.As(fx.Self()),
			fx.As(new(prometheus.Registerer)),
		),
		metrics.NewPushMetrics,
		metrics.NewPriceMetrics,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewProductRepository,
			postgres.NewCategoryRepository,
			postgres.NewSourceRepository,
			postgres.NewPriceRepository,
			postgres.NewTickerRepository,
			postgres.NewPushSubscriptionRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			newPushSender,
		),
	)
}

// newPushSender builds the Web Push sender. Push stays disabled without VAPID credentials.
func newPushSender(cfg *config.Config, logger *slog.Logger) (service.PushSender, error) {
	sender, err := notification.NewWebPushSender(cfg.WebPush, &http.Client{Timeout: cfg.WebPush.Timeout})
	if errors.Is(err, service.ErrPushNotConfigured) {
		logger.Warn("Web Push is not configured, price change notifications are disabled")

		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Web Push sender")
	}

	return sender, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewPushService,
			impl.NewPriceService,
			impl.NewCatalogService,
			impl.NewAdminCatalogService,
			impl.NewAdminAuthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewHealthHandler,
			handler.NewMetricsHandler,
			handler.NewCatalogHandler,
			handler.NewPushHandler,
			handler.NewAdminHandler,
			handler.NewPriceHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
