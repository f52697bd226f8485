package auth

import (
	"testing"
	"time"

	"qimat/config"
	"qimat/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(secret string, ttl time.Duration) *config.Config {
	cfg := &config.Config{Admin: &config.AdminConfig{TokenTTL: ttl}}
	cfg.SecretKey.Access = secret

	return cfg
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	tokenService, err := NewJWTService(newTestConfig("test_access_secret_key_very_long_for_testing", time.Hour))
	require.NoError(t, err)

	before := time.Now()
	token, expiresAt, err := tokenService.GenerateAccessToken("admin", []string{service.RoleAdmin})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, before.Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tokenService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, []string{service.RoleAdmin}, claims.Roles)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_MissingSecret(t *testing.T) {
	_, err := NewJWTService(newTestConfig("", time.Hour))
	assert.Error(t, err)
}

func TestJWTService_InvalidToken(t *testing.T) {
	tokenService, err := NewJWTService(newTestConfig("secret-one", time.Hour))
	require.NoError(t, err)

	claims, err := tokenService.ValidateToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)

	other, err := NewJWTService(newTestConfig("secret-two", time.Hour))
	require.NoError(t, err)
	token, _, err := other.GenerateAccessToken("admin", []string{service.RoleAdmin})
	require.NoError(t, err)

	_, err = tokenService.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc, err := NewJWTService(newTestConfig("secret", time.Minute))
	require.NoError(t, err)

	impl := svc.(*jwtService)
	impl.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := impl.GenerateAccessToken("admin", nil)
	require.NoError(t, err)

	impl.now = time.Now
	_, err = impl.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
