// Package auth issues and validates the bearer tokens that identify a
// learner. Tokens are HS256-signed JWTs whose uid claim carries the user ID
// that scopes every memory state and review.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService issues and validates access tokens.
type TokenService interface {
	// GenerateToken signs a new access token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies the signature and time claims of tokenString
	// and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims holds the validated contents of an access token.
type Claims struct {
	UserID    uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
