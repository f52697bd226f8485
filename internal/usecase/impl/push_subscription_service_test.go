package impl

import (
	"context"
	"testing"

	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	mockSvc "qimat/internal/mocks/service"
	"qimat/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribeInput(clientID, endpoint string, favorites ...int64) *usecase.SubscribeInput {
	return &usecase.SubscribeInput{
		ClientID:    clientID,
		Endpoint:    endpoint,
		P256dh:      "BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA_0QTpQtUbVlUls0VJXg7A8u-Ts1XbjhazAkj7I99e8QcYP7DkM",
		Auth:        "tBHItJI5svbpez7KI4CCXg",
		FavoriteIDs: favorites,
	}
}

func TestPushService_PublicKey(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pushService(nil).PublicKey(context.Background())
	require.ErrorIs(t, err, domainerrors.ErrPushNotConfigured)

	sender := mockSvc.NewMockPushSender(t)
	sender.EXPECT().PublicKey().Return("BPublicKey")

	key, err := env.pushService(sender).PublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BPublicKey", key)
}

func TestPushService_Subscribe_EndpointMovesToNewClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	srv := env.pushService(nil)

	require.NoError(t, srv.Subscribe(ctx, subscribeInput("old-client", "https://push.test/ep", 3, 1, 3)))
	require.NoError(t, srv.Subscribe(ctx, subscribeInput("new-client", "https://push.test/ep", 2)))

	_, err := env.subscription.FindByClientID(ctx, "old-client")
	require.ErrorIs(t, err, repository.ErrPushSubscriptionNotFound)

	sub, err := env.subscription.FindByClientID(ctx, "new-client")
	require.NoError(t, err)
	assert.Equal(t, "https://push.test/ep", sub.Endpoint)
	assert.Equal(t, []int64{2}, sub.FavoriteIDs)
	assert.True(t, sub.IsActive)

	active, err := env.subscription.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}

func TestPushService_Subscribe_DedupesFavorites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.pushService(nil).Subscribe(ctx, subscribeInput("c1", "https://push.test/c1", 7, 5, 7)))

	sub, err := env.subscription.FindByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7}, sub.FavoriteIDs)
}

func TestPushService_Subscribe_Validation(t *testing.T) {
	env := newTestEnv(t)
	srv := env.pushService(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input *usecase.SubscribeInput
	}{
		{name: "nil input", input: nil},
		{name: "missing client", input: subscribeInput("", "https://push.test/a")},
		{name: "missing endpoint", input: subscribeInput("c1", "")},
		{name: "non-http endpoint", input: subscribeInput("c1", "ftp://push.test/a")},
		{name: "missing keys", input: &usecase.SubscribeInput{ClientID: "c1", Endpoint: "https://push.test/a"}},
		{name: "bad favorite", input: subscribeInput("c1", "https://push.test/a", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := srv.Subscribe(ctx, tt.input)
			require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}
}

func TestPushService_UpdatePreferencesAndUnsubscribe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	srv := env.pushService(nil)

	require.NoError(t, srv.Subscribe(ctx, subscribeInput("c1", "https://push.test/c1", 1)))
	require.NoError(t, srv.UpdatePreferences(ctx, "c1", []int64{4, 2}))
	require.NoError(t, srv.UpdatePreferences(ctx, "unknown", []int64{4}))

	sub, err := env.subscription.FindByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, sub.FavoriteIDs)

	require.NoError(t, srv.Unsubscribe(ctx, "c1"))
	require.NoError(t, srv.Unsubscribe(ctx, "unknown"))

	sub, err = env.subscription.FindByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, sub.IsActive)

	require.ErrorIs(t, srv.Unsubscribe(ctx, " "), domainerrors.ErrValidationFailed)
	require.ErrorIs(t, srv.UpdatePreferences(ctx, "", nil), domainerrors.ErrValidationFailed)
}
