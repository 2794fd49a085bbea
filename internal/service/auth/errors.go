package auth

import "errors"

// Token validation failures. The auth middleware answers all of them with
// 401; they stay distinct for logging and tests.
var (
	ErrMissingToken     = errors.New("authentication token is missing")
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
)

// ErrInvalidCredentials is returned by SignIn for an unknown email and for a
// wrong password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")
