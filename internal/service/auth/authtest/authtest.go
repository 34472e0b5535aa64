// Package authtest provides helpers for tests that need signed access tokens.
package authtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/config"
	"github.com/phrazzld/devtracker-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// DefaultJWTConfig returns a JWT configuration suitable for tests.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
	}
}

// RequireTestJWTService creates a JWT service with DefaultJWTConfig and
// fails the test on error.
func RequireTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "failed to create test JWT service")
	return svc
}

// GenerateAuthHeaderForTestingT returns a "Bearer <token>" header value for
// userID signed with DefaultJWTConfig.
func GenerateAuthHeaderForTestingT(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := RequireTestJWTService(t).GenerateToken(context.Background(), userID)
	require.NoError(t, err, "failed to generate auth token")
	return "Bearer " + token
}
