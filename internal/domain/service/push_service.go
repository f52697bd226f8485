package service

import (
	"context"

	"qimat/internal/domain/entity"
	"qimat/internal/errors"
)

var (
	// ErrPushNotConfigured is returned when no delivery credentials are configured.
	ErrPushNotConfigured = errors.New("push notifications not configured")
	// ErrSubscriptionGone is returned when the push service reports the endpoint
	// permanently invalid (HTTP 404 or 410). The subscription must be deleted.
	ErrSubscriptionGone = errors.New("push subscription gone")
)

// PushSender delivers an encrypted payload to a single browser push endpoint.
// Errors wrapping ErrSubscriptionGone are permanent, any other error is transient.
type PushSender interface {
	// Send delivers payload to the subscription endpoint.
	Send(ctx context.Context, subscription *entity.PushSubscription, payload []byte) error

	// PublicKey returns the VAPID application server key clients subscribe with.
	PublicKey() string
}
