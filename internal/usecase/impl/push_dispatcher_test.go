package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/domain/service"
	mockSvc "qimat/internal/mocks/service"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func forClient(clientID string) any {
	return mock.MatchedBy(func(sub *entity.PushSubscription) bool {
		return sub.ClientID == clientID
	})
}

func priceEvent(product *entity.Product, oldPrice, newPrice int64) *entity.PriceChangeEvent {
	return &entity.PriceChangeEvent{
		ProductID:     product.ID,
		ProductSlug:   product.Slug,
		ProductName:   product.Name,
		OldPrice:      decimal.NewFromInt(oldPrice),
		NewPrice:      decimal.NewFromInt(newPrice),
		CurrencyLabel: product.CurrencyLabel,
	}
}

func TestPushService_Dispatch_TargetsActiveFavorites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p5 := env.seedProduct(t, "product-five")
	p7 := env.seedProduct(t, "product-seven")

	env.seedSubscription(t, "s1", true, p5.ID, p7.ID)
	env.seedSubscription(t, "s2", true, p7.ID)
	env.seedSubscription(t, "s3", false, p5.ID)

	sender := mockSvc.NewMockPushSender(t)
	sender.EXPECT().Send(mock.Anything, forClient("s1"), mock.Anything).Return(nil).Once()

	result, err := env.pushService(sender).DispatchPriceChange(ctx, priceEvent(p5, 100, 120))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Zero(t, result.Skipped)
	assert.Zero(t, result.Pruned)
	assert.Empty(t, result.Reason)
}

func TestPushService_Dispatch_PrunesGoneEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p5 := env.seedProduct(t, "product-five")

	env.seedSubscription(t, "s1", true, p5.ID)
	env.seedSubscription(t, "s2", true, p5.ID)

	sender := mockSvc.NewMockPushSender(t)
	sender.EXPECT().Send(mock.Anything, forClient("s1"), mock.Anything).
		Return(errors.Wrap(service.ErrSubscriptionGone, "push service responded 410")).Once()
	sender.EXPECT().Send(mock.Anything, forClient("s2"), mock.Anything).Return(nil).Once()

	result, err := env.pushService(sender).DispatchPriceChange(ctx, priceEvent(p5, 100, 90))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Pruned)

	_, err = env.subscription.FindByClientID(ctx, "s1")
	require.ErrorIs(t, err, repository.ErrPushSubscriptionNotFound)

	s2, err := env.subscription.FindByClientID(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, s2.IsActive)
}

func TestPushService_Dispatch_TransientFailureIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "cement")
	env.seedSubscription(t, "s1", true, p.ID)
	env.seedSubscription(t, "s2", true, p.ID)

	sender := mockSvc.NewMockPushSender(t)
	sender.EXPECT().Send(mock.Anything, forClient("s1"), mock.Anything).Return(errors.New("push service responded 503")).Once()
	sender.EXPECT().Send(mock.Anything, forClient("s2"), mock.Anything).Return(nil).Once()

	result, err := env.pushService(sender).DispatchPriceChange(ctx, priceEvent(p, 100, 110))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Pruned)

	s1, err := env.subscription.FindByClientID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s1.IsActive)
}

func TestPushService_Dispatch_Payload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "sugar")
	env.seedSubscription(t, "s1", true, p.ID)

	var (
		mu      sync.Mutex
		payload entity.PushPayload
	)
	sender := mockSvc.NewMockPushSender(t)
	sender.EXPECT().Send(mock.Anything, forClient("s1"), mock.Anything).
		Run(func(_ context.Context, _ *entity.PushSubscription, raw []byte) {
			mu.Lock()
			defer mu.Unlock()
			assert.NoError(t, json.Unmarshal(raw, &payload))
		}).
		Return(nil).Once()

	_, err := env.pushService(sender).DispatchPriceChange(ctx, priceEvent(p, 100, 120))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "sugar", payload.Title)
	assert.Equal(t, "100 → 120 so'm (+20.00%)", payload.Body)
	assert.Equal(t, "/icon.png", payload.Icon)
	assert.Equal(t, "/badge.png", payload.Badge)
	assert.Equal(t, p.ID, payload.Data.ProductID)
	assert.Equal(t, "100", payload.Data.OldPrice)
	assert.Equal(t, "120", payload.Data.NewPrice)
	assert.Equal(t, "+20.00%", payload.Data.Change)
	assert.Equal(t, "https://qimat.test/products/sugar", payload.Data.URL)
}

func TestPushService_Dispatch_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "sugar")
	env.seedSubscription(t, "s1", true, p.ID)

	result, err := env.pushService(nil).DispatchPriceChange(context.Background(), priceEvent(p, 100, 120))
	require.NoError(t, err)
	assert.Zero(t, result.Sent)
	assert.Equal(t, service.ErrPushNotConfigured.Error(), result.Reason)
}

func TestPushService_Dispatch_SlowDeliveryIsSkippedAfterTimeout(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "flour")
	env.seedSubscription(t, "s1", true, p.ID)
	env.seedSubscription(t, "s2", true, p.ID)

	sender := mockSvc.NewMockPushSender(t)
	sender.EXPECT().Send(mock.Anything, forClient("s1"), mock.Anything).
		RunAndReturn(func(ctx context.Context, _ *entity.PushSubscription, _ []byte) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("delivery context has no deadline")
			}
			<-ctx.Done()

			return ctx.Err()
		}).Once()
	sender.EXPECT().Send(mock.Anything, forClient("s2"), mock.Anything).Return(nil).Once()

	srv := env.pushService(sender)
	srv.(*pushService).timeout = 50 * time.Millisecond

	started := time.Now()
	result, err := srv.DispatchPriceChange(context.Background(), priceEvent(p, 100, 110))
	require.NoError(t, err)

	assert.Less(t, time.Since(started), time.Second)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Pruned)

	_, err = env.subscription.FindByClientID(context.Background(), "s1")
	require.NoError(t, err)
}

func TestPushService_Dispatch_RespectsConcurrencyLimit(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "rice")
	for i := range 5 {
		env.seedSubscription(t, fmt.Sprintf("s%d", i), true, p.ID)
	}

	var (
		mu          sync.Mutex
		inFlight    int
		maxInFlight int
	)

	sender := mockSvc.NewMockPushSender(t)
	sender.EXPECT().Send(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, *entity.PushSubscription, []byte) error {
			mu.Lock()
			inFlight++
			maxInFlight = max(maxInFlight, inFlight)
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()

			return nil
		}).Times(5)

	srv := env.pushService(sender)
	srv.(*pushService).concurrency = 2

	result, err := srv.DispatchPriceChange(context.Background(), priceEvent(p, 100, 95))
	require.NoError(t, err)

	assert.Equal(t, 5, result.Sent)
	assert.Positive(t, maxInFlight)
	assert.LessOrEqual(t, maxInFlight, 2)
}

func TestPushService_Dispatch_RejectsMissingProduct(t *testing.T) {
	env := newTestEnv(t)
	srv := env.pushService(mockSvc.NewMockPushSender(t))

	_, err := srv.DispatchPriceChange(context.Background(), nil)
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = srv.DispatchPriceChange(context.Background(), &entity.PriceChangeEvent{})
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+20.00%", formatChange(decimal.NewFromInt(20)))
	assert.Equal(t, "-12.50%", formatChange(decimal.RequireFromString("-12.5")))
	assert.Equal(t, "+0.00%", formatChange(decimal.Zero))
}

func TestProductURL(t *testing.T) {
	assert.Equal(t, "https://qimat.test/products/sugar", productURL("https://qimat.test/", "sugar", 3))
	assert.Equal(t, "https://qimat.test/?product=3", productURL("https://qimat.test", "", 3))
}
