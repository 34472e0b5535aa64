package auth

import (
	"errors"
	"fmt"

	"github.com/phrazzld/devtracker-api/internal/domain"
)

// Common authentication errors. Each one wraps domain.ErrUnauthorized.
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = fmt.Errorf("%w: invalid authentication token", domain.ErrUnauthorized)

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = fmt.Errorf("%w: authentication token has expired", domain.ErrUnauthorized)

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = fmt.Errorf("%w: authentication token not yet valid", domain.ErrUnauthorized)

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = fmt.Errorf("%w: authentication token is missing", domain.ErrUnauthorized)

	// ErrWrongTokenType indicates the token was not issued as an access token
	ErrWrongTokenType = fmt.Errorf("%w: wrong token type", domain.ErrUnauthorized)
)

// ErrWeakSecret is returned by NewJWTService when the signing secret is too short.
var ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")
