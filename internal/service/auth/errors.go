package auth

import "errors"

// Errors returned by TokenService.ValidateToken.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures and bad claims.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the token's exp claim has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned when the token's nbf or iat claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when no token was supplied.
	ErrMissingToken = errors.New("authentication token is missing")
)
