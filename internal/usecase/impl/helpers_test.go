package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"qimat/config"
	"qimat/internal/domain/entity"
	"qimat/internal/domain/repository"
	"qimat/internal/domain/service"
	"qimat/internal/infra/persistence/postgres"
	"qimat/internal/infra/persistence/sqlitetest"
	"qimat/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv wires real repositories over an in-memory database.
type testEnv struct {
	txManager    repository.TransactionManager
	products     repository.ProductRepository
	categories   repository.CategoryRepository
	sources      repository.SourceRepository
	prices       repository.PriceRepository
	tickers      repository.TickerRepository
	subscription repository.PushSubscriptionRepository
	cfg          *config.Config
	logger       *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := sqlitetest.New(t)

	return &testEnv{
		txManager:    postgres.NewTransactionManager(db),
		products:     postgres.NewProductRepository(db),
		categories:   postgres.NewCategoryRepository(db),
		sources:      postgres.NewSourceRepository(db),
		prices:       postgres.NewPriceRepository(db),
		tickers:      postgres.NewTickerRepository(db),
		subscription: postgres.NewPushSubscriptionRepository(db),
		cfg: &config.Config{
			Prices:  &config.PricesConfig{Timezone: "UTC", HistoryDays: 30},
			WebPush: &config.WebPushConfig{Concurrency: 4, Timeout: time.Second},
			Site:    &config.SiteConfig{BaseURL: "https://qimat.test/", Icon: "/icon.png", Badge: "/badge.png"},
			Admin:   &config.AdminConfig{},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (env *testEnv) pushService(sender service.PushSender) usecase.PushUsecase {
	return NewPushService(PushServiceParams{
		SubscriptionRepo: env.subscription,
		Sender:           sender,
		Config:           env.cfg,
		Logger:           env.logger,
	})
}

func (env *testEnv) priceService(push usecase.PushUsecase, today time.Time) usecase.PriceUsecase {
	srv := NewPriceService(PriceServiceParams{
		TxManager:   env.txManager,
		ProductRepo: env.products,
		PriceRepo:   env.prices,
		Push:        push,
		Config:      env.cfg,
		Logger:      env.logger,
	})
	srv.(*priceService).now = func() time.Time { return today }

	return srv
}

func (env *testEnv) seedProduct(t *testing.T, slug string) *entity.Product {
	t.Helper()

	product := &entity.Product{Slug: slug, Name: slug, Unit: "kg", CurrencyLabel: "so'm", IsActive: true}
	require.NoError(t, env.products.CreateProduct(context.Background(), product))

	return product
}

func (env *testEnv) seedPrice(t *testing.T, productID int64, date string, price int64) {
	t.Helper()

	require.NoError(t, env.prices.UpsertPrice(context.Background(), &entity.PriceRecord{
		ProductID: productID,
		Date:      mustDate(date),
		Price:     decimal.NewFromInt(price),
	}))
}

func (env *testEnv) seedSubscription(t *testing.T, clientID string, active bool, favorites ...int64) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, env.subscription.Upsert(ctx, &entity.PushSubscription{
		ClientID:    clientID,
		Endpoint:    "https://push.test/" + clientID,
		P256dh:      "p256dh-" + clientID,
		Auth:        "auth-" + clientID,
		FavoriteIDs: favorites,
	}))
	if !active {
		require.NoError(t, env.subscription.Deactivate(ctx, clientID))
	}
}

func mustDate(s string) time.Time {
	d, err := entity.ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}
