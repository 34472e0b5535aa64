package middleware

import (
	"errors"
	"net/http"

	"github.com/phrazzld/devtracker-api/internal/api/shared"
	"github.com/phrazzld/devtracker-api/internal/domain"
	"github.com/phrazzld/devtracker-api/internal/service/auth"
)

// AuthMiddleware resolves the bearer credential of each request to an owner id.
type AuthMiddleware struct {
	gateway auth.Gateway
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(gateway auth.Gateway) *AuthMiddleware {
	return &AuthMiddleware{
		gateway: gateway,
	}
}

// Authenticate rejects requests without a valid access token and stores the
// resolved owner id in the request context otherwise.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := m.gateway.ResolveIdentity(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Authorization header required", err)
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
			case errors.Is(err, domain.ErrUnauthorized):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithOwnerID(r.Context(), ownerID)))
	})
}
