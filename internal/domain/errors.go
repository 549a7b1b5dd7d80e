package domain

import "errors"

// Registry outcomes the router maps onto HTTP statuses.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not in session")
	ErrInvalidPassword = errors.New("invalid password")
	ErrSessionFull     = errors.New("session is full")
)
