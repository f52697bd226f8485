package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"qimat/internal/domain/service"
	mockSvc "qimat/internal/mocks/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveProtected(t *testing.T, tokens service.TokenService, header string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	auth := NewAuthMiddleware(tokens)
	e.GET("/admin", func(c echo.Context) error {
		subject, ok := GetSubject(c)
		require.True(t, ok)

		return c.String(http.StatusOK, subject)
	}, auth.Authenticate, auth.RequireRole(service.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestAuthMiddleware_AllowsAdmin(t *testing.T) {
	tokens := mockSvc.NewMockTokenService(t)
	tokens.EXPECT().ValidateToken("good").Return(&service.Claims{
		Roles:            []string{service.RoleAdmin},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"},
	}, nil)

	rec := serveProtected(t, tokens, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	rec := serveProtected(t, mockSvc.NewMockTokenService(t), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_TOKEN")
}

func TestAuthMiddleware_RejectsNonBearer(t *testing.T) {
	rec := serveProtected(t, mockSvc.NewMockTokenService(t), "Basic YWRtaW46YWRtaW4=")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsInvalidToken(t *testing.T) {
	tokens := mockSvc.NewMockTokenService(t)
	tokens.EXPECT().ValidateToken("expired").Return(nil, jwt.ErrTokenExpired)

	rec := serveProtected(t, tokens, "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsMissingRole(t *testing.T) {
	tokens := mockSvc.NewMockTokenService(t)
	tokens.EXPECT().ValidateToken("viewer").Return(&service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "viewer"},
	}, nil)

	rec := serveProtected(t, tokens, "Bearer viewer")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
