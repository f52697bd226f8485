package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is granted to dashboard operators.
const RoleAdmin = "admin"

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateAccessToken creates a signed access token for subject with roles.
	GenerateAccessToken(subject string, roles []string) (token string, expiresAt time.Time, err error)

	// ValidateToken checks the validity of a token string and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)
}
