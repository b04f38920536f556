package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing.
type MockTokenService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Defaults returned when the matching Fn is nil.
	Token       string
	Err         error
	Claims      *auth.Claims
	ValidateErr error

	ValidateTokenCalls Calls[string]
}

var _ auth.TokenService = (*MockTokenService)(nil)

// GenerateToken implements auth.TokenService.
func (m *MockTokenService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return m.Token, m.Err
}

// ValidateToken implements auth.TokenService.
func (m *MockTokenService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	m.ValidateTokenCalls.record(tokenString)
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}
