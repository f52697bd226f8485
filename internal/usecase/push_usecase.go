package usecase

import (
	"context"

	"qimat/internal/domain/entity"
)

// SubscribeInput registers a browser push endpoint for a client.
type SubscribeInput struct {
	ClientID    string
	Endpoint    string
	P256dh      string
	Auth        string
	FavoriteIDs []int64
}

// DispatchResult summarizes one fan-out.
type DispatchResult struct {
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Pruned  int    `json:"pruned"`
	Reason  string `json:"reason,omitempty"`
}

// Add accumulates other into r. The first non-empty reason wins.
func (r *DispatchResult) Add(other *DispatchResult) {
	if other == nil {
		return
	}
	r.Sent += other.Sent
	r.Skipped += other.Skipped
	r.Pruned += other.Pruned
	if r.Reason == "" {
		r.Reason = other.Reason
	}
}

// PushUsecase manages browser push subscriptions and delivers price change alerts.
type PushUsecase interface {
	// PublicKey returns the VAPID public key clients subscribe with.
	PublicKey(ctx context.Context) (string, error)

	// Subscribe registers or refreshes the push endpoint of a client.
	Subscribe(ctx context.Context, input *SubscribeInput) error

	// UpdatePreferences replaces the favorite products of a client.
	UpdatePreferences(ctx context.Context, clientID string, favoriteIDs []int64) error

	// Unsubscribe deactivates the subscription of a client.
	Unsubscribe(ctx context.Context, clientID string) error

	// DispatchPriceChange notifies every active subscriber that favorited the product.
	// Delivery failures are reported in the result, never as an error.
	DispatchPriceChange(ctx context.Context, event *entity.PriceChangeEvent) (*DispatchResult, error)
}
