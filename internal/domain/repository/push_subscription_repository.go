package repository

import (
	"context"

	"qimat/internal/domain/entity"
	"qimat/internal/errors"
)

// ErrPushSubscriptionNotFound is returned when no subscription matches the lookup.
var ErrPushSubscriptionNotFound = errors.New("push subscription not found")

// PushSubscriptionRepository is the subscription store. It keeps one push
// endpoint per client together with the set of favorite product ids.
type PushSubscriptionRepository interface {
	// Upsert creates or updates the row keyed by ClientID, removes any row of another
	// client that claims the same Endpoint, replaces the favorites and marks it active.
	Upsert(ctx context.Context, subscription *entity.PushSubscription) error

	// UpdateFavorites replaces the favorite ids of a client. Unknown clients are ignored.
	UpdateFavorites(ctx context.Context, clientID string, favoriteIDs []int64) error

	// Deactivate marks the subscription of a client inactive without deleting it.
	Deactivate(ctx context.Context, clientID string) error

	// FindActiveByProduct returns active subscriptions whose favorites contain productID.
	FindActiveByProduct(ctx context.Context, productID int64) ([]*entity.PushSubscription, error)

	// RemoveByEndpoint hard-deletes the subscription for an endpoint. Missing rows are not an error.
	RemoveByEndpoint(ctx context.Context, endpoint string) error

	// FindByClientID retrieves the subscription of a client.
	FindByClientID(ctx context.Context, clientID string) (*entity.PushSubscription, error)

	// CountActive returns the number of active subscriptions.
	CountActive(ctx context.Context) (int64, error)
}
