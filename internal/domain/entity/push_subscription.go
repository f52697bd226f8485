// Package entity contains the core business objects of the project.
package entity

import (
	"time"
)

// PushSubscription is a browser push endpoint registered by one client installation.
type PushSubscription struct {
	ID          int64     `json:"id"`           // Surrogate key.
	ClientID    string    `json:"client_id"`    // Opaque id, stable per installed browser instance.
	Endpoint    string    `json:"endpoint"`     // Push service URL; globally unique.
	P256dh      string    `json:"p256dh"`       // Client public key for payload encryption.
	Auth        string    `json:"auth"`         // Client auth secret for payload encryption.
	FavoriteIDs []int64   `json:"favorite_ids"` // Products the client wants alerts for.
	IsActive    bool      `json:"is_active"`    // False after opt-out; the row is kept.
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasFavorite reports whether productID is one of the subscription favorites.
func (s *PushSubscription) HasFavorite(productID int64) bool {
	for _, id := range s.FavoriteIDs {
		if id == productID {
			return true
		}
	}

	return false
}

// PushPayload is the JSON document delivered to the browser service worker.
type PushPayload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon,omitempty"`
	Badge string          `json:"badge,omitempty"`
	Data  PushPayloadData `json:"data"`
}

// PushPayloadData carries the price change details for the notification click handler.
type PushPayloadData struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	OldPrice    string `json:"oldPrice"`
	NewPrice    string `json:"newPrice"`
	Change      string `json:"change"`
	URL         string `json:"url"`
}
