package middleware

import (
	"slices"
	"strings"

	"qimat/internal/delivery/api/response"
	deliverycontext "qimat/internal/delivery/context"
	"qimat/internal/domain/service"

	"github.com/labstack/echo/v4"
)

const contextKeyRoles = "auth_roles"

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer access token and stores its subject and roles on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		c.Set(contextKeyRoles, claims.Roles)
		c.SetRequest(c.Request().WithContext(deliverycontext.WithActor(c.Request().Context(), claims.Subject)))

		return next(c)
	}
}

// RequireRole checks that the authenticated caller holds role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(contextKeyRoles).([]string)
			if !ok {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: role information missing")
			}

			if !slices.Contains(roles, role) {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: require '"+role+"' role")
			}

			return next(c)
		}
	}
}

// GetSubject returns the subject of the authenticated caller.
func GetSubject(c echo.Context) (string, bool) {
	return deliverycontext.Actor(c.Request().Context())
}
