package impl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/usecase"

	"github.com/pkg/errors"
)

// PublicKey returns the VAPID public key, or ErrPushNotConfigured when push is disabled.
func (srv *pushService) PublicKey(_ context.Context) (string, error) {
	if srv.sender == nil {
		return "", domainerrors.ErrPushNotConfigured
	}

	return srv.sender.PublicKey(), nil
}

// Subscribe registers the endpoint of a client and replaces its favorites.
func (srv *pushService) Subscribe(ctx context.Context, input *usecase.SubscribeInput) error {
	if input == nil {
		return domainerrors.ErrValidationFailed.WithDetails("subscription is required")
	}

	clientID := strings.TrimSpace(input.ClientID)
	endpoint := strings.TrimSpace(input.Endpoint)
	switch {
	case clientID == "":
		return domainerrors.ErrValidationFailed.WithDetails("clientId is required")
	case endpoint == "":
		return domainerrors.ErrValidationFailed.WithDetails("subscription endpoint is required")
	case !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://"):
		return domainerrors.ErrValidationFailed.WithDetails("subscription endpoint must be an http(s) URL")
	case strings.TrimSpace(input.P256dh) == "" || strings.TrimSpace(input.Auth) == "":
		return domainerrors.ErrValidationFailed.WithDetails("subscription keys are required")
	}

	favorites, err := normalizeFavorites(input.FavoriteIDs)
	if err != nil {
		return err
	}

	if err := srv.subscriptionRepo.Upsert(ctx, &entity.PushSubscription{
		ClientID:    clientID,
		Endpoint:    endpoint,
		P256dh:      strings.TrimSpace(input.P256dh),
		Auth:        strings.TrimSpace(input.Auth),
		FavoriteIDs: favorites,
	}); err != nil {
		return mapRepoError(err, "failed to save push subscription")
	}

	srv.log(ctx).Debug("Push subscription registered", slog.String("clientId", clientID), slog.Int("favorites", len(favorites)))

	return nil
}

// UpdatePreferences replaces the favorites of a client. Unknown clients are ignored.
func (srv *pushService) UpdatePreferences(ctx context.Context, clientID string, favoriteIDs []int64) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domainerrors.ErrValidationFailed.WithDetails("clientId is required")
	}

	favorites, err := normalizeFavorites(favoriteIDs)
	if err != nil {
		return err
	}

	if err := srv.subscriptionRepo.UpdateFavorites(ctx, clientID, favorites); err != nil {
		return errors.Wrap(err, "failed to update favorites")
	}

	return nil
}

// Unsubscribe deactivates the subscription of a client and keeps the row.
func (srv *pushService) Unsubscribe(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domainerrors.ErrValidationFailed.WithDetails("clientId is required")
	}

	if err := srv.subscriptionRepo.Deactivate(ctx, clientID); err != nil {
		return errors.Wrap(err, "failed to deactivate push subscription")
	}

	srv.log(ctx).Debug("Push subscription deactivated", slog.String("clientId", clientID))

	return nil
}

// normalizeFavorites rejects non-positive ids and removes duplicates.
func normalizeFavorites(ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, domainerrors.ErrValidationFailed.WithDetails("favoriteIds must be positive")
		}
		out = append(out, id)
	}
	slices.Sort(out)

	return slices.Compact(out), nil
}
