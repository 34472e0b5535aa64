package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/devtracker-api/internal/platform/logger"
)

// Gateway resolves a caller's credential to the owner id every task
// operation is scoped to.
type Gateway interface {
	// ResolveIdentity returns the owner id for a bearer credential. Every
	// failure wraps domain.ErrUnauthorized.
	ResolveIdentity(ctx context.Context, credential string) (uuid.UUID, error)
}

type jwtGateway struct {
	tokens JWTService
}

// NewGateway returns a Gateway that accepts access tokens validated by tokens.
func NewGateway(tokens JWTService) Gateway {
	return &jwtGateway{tokens: tokens}
}

// ResolveIdentity implements Gateway.ResolveIdentity. A "Bearer " prefix is
// accepted and stripped.
func (g *jwtGateway) ResolveIdentity(ctx context.Context, credential string) (uuid.UUID, error) {
	token := strings.TrimSpace(credential)
	if scheme, rest, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, "bearer") {
		token = strings.TrimSpace(rest)
	} else if strings.EqualFold(token, "bearer") {
		token = ""
	}
	if token == "" {
		return uuid.Nil, ErrMissingToken
	}

	claims, err := g.tokens.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.UserID == uuid.Nil {
		logger.FromContext(ctx).Debug("token carries no owner id",
			slog.String("token_id", claims.ID))
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}
