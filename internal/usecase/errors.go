package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrAuth means credentials could not be refreshed.
	ErrAuth = errors.New("credential refresh failed")
	// ErrUpstream wraps any fantasy API failure.
	ErrUpstream = errors.New("upstream request failed")
	// ErrNormalization marks a raw transaction with an unexpected shape.
	ErrNormalization = errors.New("transaction normalization failed")

	ErrAlreadyRunning = errors.New("polling already running")
	ErrNotRunning     = errors.New("polling not running")
)
