package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/novelplatform/novelshell/internal/models"
)

// ErrNoExpiry is returned by ParseTokenClaims for a token without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// TokenClaims are the claims the platform puts into an access token
type TokenClaims struct {
	UserID    int
	Role      models.Role
	ExpiresAt time.Time
}

// Expired reports whether the token expiry is at or before now
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// ParseTokenClaims decodes the claims of a JWT without verifying its signature.
// The client never holds the signing secret; the server remains the authority on validity.
func ParseTokenClaims(tokenString string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, ErrNoExpiry
	}

	// JWT claims decode numbers as float64
	user := models.User(claims)
	return &TokenClaims{
		UserID:    user.ID(),
		Role:      user.Role(),
		ExpiresAt: exp.Time,
	}, nil
}
