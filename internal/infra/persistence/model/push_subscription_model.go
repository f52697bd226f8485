package model

import (
	"time"
)

// PushSubscriptionModel is the GORM-specific struct for the 'push_subscriptions' table.
type PushSubscriptionModel struct {
	ID        int64                           `gorm:"primaryKey;autoIncrement"`
	ClientID  string                          `gorm:"type:varchar(128);not null;uniqueIndex"`
	Endpoint  string                          `gorm:"type:text;not null;uniqueIndex"`
	P256dh    string                          `gorm:"type:text;not null"`
	Auth      string                          `gorm:"type:text;not null"`
	IsActive  bool                            `gorm:"not null;index"`
	Favorites []PushSubscriptionFavoriteModel `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PushSubscriptionModel) TableName() string {
	return "push_subscriptions"
}

// PushSubscriptionFavoriteModel is the GORM-specific struct for the 'push_subscription_favorites' table.
// It normalizes the favorite product ids of a subscription so fan-out can filter by product in SQL.
type PushSubscriptionFavoriteModel struct {
	SubscriptionID int64 `gorm:"primaryKey;autoIncrement:false"`
	ProductID      int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName explicitly sets the table name for GORM.
func (PushSubscriptionFavoriteModel) TableName() string {
	return "push_subscription_favorites"
}
