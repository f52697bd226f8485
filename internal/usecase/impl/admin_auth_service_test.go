package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"qimat/config"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/service"
	mockSvc "qimat/internal/mocks/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminAuth(t *testing.T, admin *config.AdminConfig) (*mockSvc.MockPasswordHasher, *mockSvc.MockTokenService, *adminAuthService) {
	t.Helper()

	hasher := mockSvc.NewMockPasswordHasher(t)
	tokens := mockSvc.NewMockTokenService(t)
	srv := NewAdminAuthService(AdminAuthServiceParams{
		Hasher:       hasher,
		TokenService: tokens,
		Config:       &config.Config{Admin: admin},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return hasher, tokens, srv.(*adminAuthService)
}

func TestAdminAuthService_Login_Success(t *testing.T) {
	hasher, tokens, srv := newAdminAuth(t, &config.AdminConfig{Username: "admin", PasswordHash: "$2a$10$hash"})
	expiresAt := time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)

	hasher.EXPECT().Check("s3cret", "$2a$10$hash").Return(true)
	tokens.EXPECT().GenerateAccessToken("admin", []string{service.RoleAdmin}).Return("signed.jwt.token", expiresAt, nil)

	out, err := srv.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", out.AccessToken)
	assert.Equal(t, expiresAt, out.ExpiresAt)
}

func TestAdminAuthService_Login_WrongPassword(t *testing.T) {
	hasher, _, srv := newAdminAuth(t, &config.AdminConfig{Username: "admin", PasswordHash: "$2a$10$hash"})

	hasher.EXPECT().Check("guess", "$2a$10$hash").Return(false)

	_, err := srv.Login(context.Background(), "admin", "guess")
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAdminAuthService_Login_WrongUsername(t *testing.T) {
	hasher, _, srv := newAdminAuth(t, &config.AdminConfig{Username: "admin", PasswordHash: "$2a$10$hash"})

	hasher.EXPECT().Check("s3cret", "$2a$10$hash").Return(true)

	_, err := srv.Login(context.Background(), "root", "s3cret")
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAdminAuthService_Login_NotConfigured(t *testing.T) {
	_, _, srv := newAdminAuth(t, &config.AdminConfig{})

	_, err := srv.Login(context.Background(), "admin", "s3cret")
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAdminAuthService_Login_TokenFailure(t *testing.T) {
	hasher, tokens, srv := newAdminAuth(t, &config.AdminConfig{Username: "admin", PasswordHash: "$2a$10$hash"})

	hasher.EXPECT().Check("s3cret", "$2a$10$hash").Return(true)
	tokens.EXPECT().GenerateAccessToken("admin", []string{service.RoleAdmin}).Return("", time.Time{}, errors.New("no secret"))

	_, err := srv.Login(context.Background(), "admin", "s3cret")
	require.ErrorIs(t, err, domainerrors.ErrTokenIssueFailed)
}
