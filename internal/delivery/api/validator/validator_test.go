package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

type subscribeRequest struct {
	ClientID    string  `json:"clientId" validate:"required,max=128"`
	Keys        keys    `json:"keys"`
	FavoriteIDs []int64 `json:"favoriteIds" validate:"dive,gt=0"`
}

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&subscribeRequest{FavoriteIDs: []int64{1, 0}, Keys: keys{P256dh: "k"}})
	require.Error(t, err)

	assert.ElementsMatch(t, []string{
		"clientId: required",
		"keys.auth: required",
		"favoriteIds[1]: gt=0",
	}, Messages(err))
}

func TestValidator_Valid(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&subscribeRequest{ClientID: "c1", Keys: keys{P256dh: "k", Auth: "a"}}))
}
