package postgres

import (
	"context"
	"slices"

	"qimat/internal/domain/entity"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/repository"
	"qimat/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// pushSubscriptionRepository implements the repository.PushSubscriptionRepository interface.
type pushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPushSubscriptionRepository is the constructor for pushSubscriptionRepository.
func NewPushSubscriptionRepository(db *gorm.DB) repository.PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

// Upsert registers the endpoint for a client, superseding any other client holding the same endpoint.
func (repo *pushSubscriptionRepository) Upsert(ctx context.Context, subscription *entity.PushSubscription) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []int64
		if err := tx.Model(&model.PushSubscriptionModel{}).
			Where("endpoint = ? AND client_id <> ?", subscription.Endpoint, subscription.ClientID).
			Pluck("id", &stale).Error; err != nil {
			return errors.Wrap(err, "failed to find subscriptions sharing the endpoint")
		}
		if len(stale) > 0 {
			if err := deleteSubscriptions(tx, stale); err != nil {
				return err
			}
		}

		var subM model.PushSubscriptionModel
		err := tx.Where("client_id = ?", subscription.ClientID).First(&subM).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			subM = model.PushSubscriptionModel{
				ClientID: subscription.ClientID,
				Endpoint: subscription.Endpoint,
				P256dh:   subscription.P256dh,
				Auth:     subscription.Auth,
				IsActive: true,
			}
			if err := tx.Omit("Favorites").Create(&subM).Error; err != nil {
				if isUniqueConstraintViolation(err) {
					return domainerrors.ErrConflict.WithDetails("subscription was registered concurrently")
				}

				return domainerrors.NewDatabaseExecuteError(err, "failed to create push subscription")
			}
		case err != nil:
			return errors.Wrap(err, "failed to find push subscription by client ID")
		default:
			if err := tx.Model(&subM).Updates(map[string]any{
				"endpoint":  subscription.Endpoint,
				"p256dh":    subscription.P256dh,
				"auth":      subscription.Auth,
				"is_active": true,
			}).Error; err != nil {
				return errors.Wrap(err, "failed to update push subscription")
			}
		}

		if err := replaceFavorites(tx, subM.ID, subscription.FavoriteIDs); err != nil {
			return err
		}

		subscription.ID = subM.ID
		subscription.IsActive = true
		subscription.CreatedAt = subM.CreatedAt
		subscription.UpdatedAt = subM.UpdatedAt

		return nil
	})
}

// UpdateFavorites replaces the favorites of a client. Unknown clients are ignored.
func (repo *pushSubscriptionRepository) UpdateFavorites(ctx context.Context, clientID string, favoriteIDs []int64) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		if err := tx.Model(&model.PushSubscriptionModel{}).
			Where("client_id = ?", clientID).
			Limit(1).
			Pluck("id", &ids).Error; err != nil {
			return errors.Wrap(err, "failed to find push subscription by client ID")
		}
		if len(ids) == 0 {
			return nil
		}

		return replaceFavorites(tx, ids[0], favoriteIDs)
	})
}

// Deactivate marks the subscription of a client inactive and keeps the row.
func (repo *pushSubscriptionRepository) Deactivate(ctx context.Context, clientID string) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.PushSubscriptionModel{}).
		Where("client_id = ?", clientID).
		Update("is_active", false).Error; err != nil {
		return errors.Wrap(err, "failed to deactivate push subscription")
	}

	return nil
}

// FindActiveByProduct returns the active subscriptions that favorited the product.
func (repo *pushSubscriptionRepository) FindActiveByProduct(ctx context.Context, productID int64) ([]*entity.PushSubscription, error) {
	var subModels []*model.PushSubscriptionModel

	favorites := repo.db.
		Model(&model.PushSubscriptionFavoriteModel{}).
		Select("subscription_id").
		Where("product_id = ?", productID)

	if err := repo.db.WithContext(ctx).
		Preload("Favorites").
		Where("is_active = ? AND id IN (?)", true, favorites).
		Order("id ASC").
		Find(&subModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions by product")
	}

	subscriptions := make([]*entity.PushSubscription, 0, len(subModels))
	for _, subM := range subModels {
		subscriptions = append(subscriptions, toPushSubscriptionDomain(subM))
	}

	return subscriptions, nil
}

// RemoveByEndpoint hard-deletes the subscription registered for an endpoint.
func (repo *pushSubscriptionRepository) RemoveByEndpoint(ctx context.Context, endpoint string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		if err := tx.Model(&model.PushSubscriptionModel{}).
			Where("endpoint = ?", endpoint).
			Pluck("id", &ids).Error; err != nil {
			return errors.Wrap(err, "failed to find subscription by endpoint")
		}
		if len(ids) == 0 {
			return nil
		}

		return deleteSubscriptions(tx, ids)
	})
}

// FindByClientID retrieves the subscription of a client together with its favorites.
func (repo *pushSubscriptionRepository) FindByClientID(ctx context.Context, clientID string) (*entity.PushSubscription, error) {
	var subM model.PushSubscriptionModel

	if err := repo.db.WithContext(ctx).
		Preload("Favorites").
		Where("client_id = ?", clientID).
		First(&subM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPushSubscriptionNotFound
		}

		return nil, errors.Wrap(err, "failed to find push subscription by client ID")
	}

	return toPushSubscriptionDomain(&subM), nil
}

// CountActive returns the number of active subscriptions.
func (repo *pushSubscriptionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.PushSubscriptionModel{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count active subscriptions")
	}

	return count, nil
}

// replaceFavorites swaps the favorite set of a subscription. Duplicates are dropped.
func replaceFavorites(tx *gorm.DB, subscriptionID int64, favoriteIDs []int64) error {
	if err := tx.Where("subscription_id = ?", subscriptionID).
		Delete(&model.PushSubscriptionFavoriteModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear favorites")
	}

	ids := slices.Clone(favoriteIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil
	}

	rows := make([]model.PushSubscriptionFavoriteModel, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.PushSubscriptionFavoriteModel{SubscriptionID: subscriptionID, ProductID: id})
	}

	if err := tx.Create(&rows).Error; err != nil {
		return errors.Wrap(err, "failed to save favorites")
	}

	return nil
}

// deleteSubscriptions removes subscriptions and their favorites. Favorites go first
// so the delete does not depend on ON DELETE CASCADE being enforced.
func deleteSubscriptions(tx *gorm.DB, ids []int64) error {
	if err := tx.Where("subscription_id IN ?", ids).
		Delete(&model.PushSubscriptionFavoriteModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete favorites")
	}

	if err := tx.Where("id IN ?", ids).
		Delete(&model.PushSubscriptionModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete push subscriptions")
	}

	return nil
}

// --- Mapper Functions ---

func toPushSubscriptionDomain(data *model.PushSubscriptionModel) *entity.PushSubscription {
	if data == nil {
		return nil
	}

	favoriteIDs := make([]int64, 0, len(data.Favorites))
	for _, fav := range data.Favorites {
		favoriteIDs = append(favoriteIDs, fav.ProductID)
	}
	slices.Sort(favoriteIDs)

	return &entity.PushSubscription{
		ID:          data.ID,
		ClientID:    data.ClientID,
		Endpoint:    data.Endpoint,
		P256dh:      data.P256dh,
		Auth:        data.Auth,
		FavoriteIDs: favoriteIDs,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
