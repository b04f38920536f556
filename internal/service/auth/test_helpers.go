package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/config"
	"github.com/stretchr/testify/require"
)

// TestSecret is a signing secret long enough for NewTokenService.
const TestSecret = "test-jwt-secret-that-is-32-chars-long"

// DefaultTestConfig returns the auth configuration used by tests.
func DefaultTestConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            TestSecret,
		TokenLifetimeMinutes: 60,
	}
}

// RequireTestTokenService returns a TokenService built from DefaultTestConfig.
func RequireTestTokenService(t testing.TB) TokenService {
	t.Helper()
	svc, err := NewTokenService(DefaultTestConfig())
	require.NoError(t, err)
	return svc
}

// AuthHeaderForTesting returns a "Bearer <token>" header value for userID
// signed by svc.
func AuthHeaderForTesting(t testing.TB, svc TokenService, userID uuid.UUID) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	return "Bearer " + token
}
