package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"qimat/config"
	apimiddleware "qimat/internal/delivery/api/middleware"
	"qimat/internal/delivery/api/response"
	"qimat/internal/delivery/api/router/handler"
	"qimat/internal/delivery/api/validator"
	"qimat/internal/delivery/middleware"
	"qimat/internal/domain/entity"
	"qimat/internal/infra/auth"
	"qimat/internal/infra/metrics"
	"qimat/internal/infra/persistence/postgres"
	"qimat/internal/infra/persistence/sqlitetest"
	mockSvc "qimat/internal/mocks/service"
	"qimat/internal/usecase"
	"qimat/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminUser     = "operator"
	adminPassword = "correct horse battery staple"
)

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *response.Problem `json:"error"`
	Meta  *response.Meta    `json:"meta"`
}

type testServer struct {
	echo   *echo.Echo
	sender *mockSvc.MockPushSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := sqlitetest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hasher := auth.NewBcryptHasher()
	hash, err := hasher.Hash(adminPassword)
	require.NoError(t, err)

	cfg := &config.Config{
		Admin:   &config.AdminConfig{Username: adminUser, PasswordHash: hash, TokenTTL: time.Hour},
		Prices:  &config.PricesConfig{Timezone: "UTC", HistoryDays: 30},
		WebPush: &config.WebPushConfig{Concurrency: 2, Timeout: time.Second},
		Site:    &config.SiteConfig{BaseURL: "https://qimat.test"},
	}
	cfg.SecretKey.Access = "router-test-secret"

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	txManager := postgres.NewTransactionManager(db)
	productRepo := postgres.NewProductRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	sourceRepo := postgres.NewSourceRepository(db)
	priceRepo := postgres.NewPriceRepository(db)
	tickerRepo := postgres.NewTickerRepository(db)
	subscriptionRepo := postgres.NewPushSubscriptionRepository(db)

	reg := metrics.NewRegistry()
	sender := mockSvc.NewMockPushSender(t)

	pushUC := impl.NewPushService(impl.PushServiceParams{
		SubscriptionRepo: subscriptionRepo,
		Sender:           sender,
		Metrics:          metrics.NewPushMetrics(reg),
		Config:           cfg,
		Logger:           logger,
	})
	priceUC := impl.NewPriceService(impl.PriceServiceParams{
		TxManager:   txManager,
		ProductRepo: productRepo,
		PriceRepo:   priceRepo,
		Push:        pushUC,
		Metrics:     metrics.NewPriceMetrics(reg),
		Config:      cfg,
		Logger:      logger,
	})
	catalogUC := impl.NewCatalogService(impl.CatalogServiceParams{
		ProductRepo:  productRepo,
		CategoryRepo: categoryRepo,
		SourceRepo:   sourceRepo,
		PriceRepo:    priceRepo,
		TickerRepo:   tickerRepo,
		Config:       cfg,
	})
	adminCatalogUC := impl.NewAdminCatalogService(impl.AdminCatalogServiceParams{
		TxManager:        txManager,
		ProductRepo:      productRepo,
		CategoryRepo:     categoryRepo,
		SourceRepo:       sourceRepo,
		PriceRepo:        priceRepo,
		TickerRepo:       tickerRepo,
		SubscriptionRepo: subscriptionRepo,
		Config:           cfg,
		Logger:           logger,
	})
	adminAuthUC := impl.NewAdminAuthService(impl.AdminAuthServiceParams{
		Hasher:       hasher,
		TokenService: tokens,
		Config:       cfg,
		Logger:       logger,
	})

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError
	e.Use(middleware.NewRequestIDMiddleware(logger).Process)

	NewRouter(RouterParams{
		HealthHandler:  handler.NewHealthHandler(db),
		MetricsHandler: handler.NewMetricsHandler(reg),
		CatalogHandler: handler.NewCatalogHandler(handler.CatalogHandlerParams{CatalogUC: catalogUC}),
		PushHandler:    handler.NewPushHandler(handler.PushHandlerParams{PushUC: pushUC}),
		AdminHandler: handler.NewAdminHandler(handler.AdminHandlerParams{
			AuthUC:    adminAuthUC,
			CatalogUC: adminCatalogUC,
			Logger:    logger,
		}),
		PriceHandler:   handler.NewPriceHandler(handler.PriceHandlerParams{PriceUC: priceUC}),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(tokens),
	}).RegisterRoutes(e)

	return &testServer{echo: e, sender: sender}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec.Code, env
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()

	code, env := s.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": adminUser,
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, code)

	var out usecase.LoginOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.AccessToken)

	return out.AccessToken
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)

	code, _ = s.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"username": adminUser, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_PriceChangeNotifiesSubscriber(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	code, env := s.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"slug":          "sugar",
		"name":          "Shakar",
		"unit":          "kg",
		"currencyLabel": "so'm",
		"initialPrice":  100,
	})
	require.Equal(t, http.StatusCreated, code, string(env.Data))

	var product entity.ProductWithPrice
	require.NoError(t, json.Unmarshal(env.Data, &product))
	require.NotNil(t, product.CurrentPrice)

	code, _ = s.do(t, http.MethodPost, "/api/push/subscribe", "", map[string]any{
		"clientId": "browser-1",
		"subscription": map[string]any{
			"endpoint": "https://push.test/browser-1",
			"keys":     map[string]string{"p256dh": "key", "auth": "secret"},
		},
		"favoriteIds": []int64{product.ID},
	})
	require.Equal(t, http.StatusOK, code)

	s.sender.EXPECT().Send(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(entity.DateLayout)
	code, env = s.do(t, http.MethodPost, "/api/admin/prices/bulk", token, map[string]any{
		"date": tomorrow,
		"updates": []map[string]any{
			{"productId": product.ID, "price": 120},
			{"productId": 4242, "price": -1},
		},
	})
	require.Equal(t, http.StatusOK, code)

	var result usecase.BulkPriceResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.AppliedCount)
	require.Len(t, result.ChangedUpdates, 1)
	assert.True(t, result.ChangedUpdates[0].OldPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.ChangedUpdates[0].NewPrice.Equal(decimal.NewFromInt(120)))
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 1, result.Notifications.Sent)

	code, env = s.do(t, http.MethodGet, "/api/products/sugar?days=7", "", nil)
	require.Equal(t, http.StatusOK, code)

	var detail usecase.ProductDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Len(t, detail.History, 2)

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `qimat_push_deliveries_total{outcome="sent"} 1`)
}

func TestRouter_BulkUpdateRejectsOnlyMalformedEntries(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	code, env := s.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"slug": "salt", "name": "Tuz", "initialPrice": 100,
	})
	require.Equal(t, http.StatusCreated, code, string(env.Data))

	var product entity.ProductWithPrice
	require.NoError(t, json.Unmarshal(env.Data, &product))

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(entity.DateLayout)
	code, env = s.do(t, http.MethodPost, "/api/admin/prices/bulk", token, map[string]any{
		"date": tomorrow,
		"updates": []map[string]any{
			{"productId": product.ID, "price": "120.50"},
			{"productId": product.ID, "price": "abc"},
			{"productId": product.ID, "price": true},
		},
	})
	require.Equal(t, http.StatusOK, code)

	var result usecase.BulkPriceResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.AppliedCount)
	require.Len(t, result.ChangedUpdates, 1)
	assert.True(t, result.ChangedUpdates[0].NewPrice.Equal(decimal.RequireFromString("120.50")))
	require.Len(t, result.Rejected, 2)
	for _, rejected := range result.Rejected {
		assert.Equal(t, usecase.RejectReasonValidation, rejected.Reason)
		assert.Equal(t, "price must be a number", rejected.Message)
	}
}

func TestRouter_SubscribeValidation(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/push/subscribe", "", map[string]any{
		"subscription": map[string]any{"endpoint": "not a url"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.NotEmpty(t, env.Error.Details)
}

func TestRouter_PublicKey(t *testing.T) {
	s := newTestServer(t)
	s.sender.EXPECT().PublicKey().Return("BPublic")

	code, env := s.do(t, http.MethodGet, "/api/push/public-key", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"publicKey":"BPublic"}`, string(env.Data))
}

func TestRouter_CategoryConflict(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	code, env := s.do(t, http.MethodPost, "/api/admin/categories", token, map[string]any{"slug": "fuel", "name": "Yoqilg'i"})
	require.Equal(t, http.StatusCreated, code)

	var category entity.Category
	require.NoError(t, json.Unmarshal(env.Data, &category))

	code, _ = s.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"slug": "ai-92", "name": "AI-92", "categoryId": category.ID,
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(t, http.MethodDelete, "/api/admin/categories/"+jsonInt(category.ID), token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CATEGORY_IN_USE", env.Error.Code)

	code, _ = s.do(t, http.MethodDelete, "/api/admin/categories/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func jsonInt(v int64) string {
	raw, _ := json.Marshal(v)

	return string(raw)
}
