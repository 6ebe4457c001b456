package session

import "errors"

var (
	// ErrNotFound means the token does not map to a live session.
	ErrNotFound = errors.New("session not found")

	// ErrExpired means the session passed its expiry and must be restarted.
	ErrExpired = errors.New("session has expired")

	// ErrInvalidToken means the bearer token failed signature or claim checks.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrNotAuthenticated means the session has no verified voter bound to it.
	ErrNotAuthenticated = errors.New("session is not authenticated")
)
