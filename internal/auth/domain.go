package auth

import (
	"errors"
	"time"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// ErrTokenExpired is returned when the backend hands out a token that has
// already expired, and used by RequireAuth to end stale sessions.
var ErrTokenExpired = errors.New("auth: token expired")

// ErrUnknownRole is returned when the backend signs in an account whose role
// has no page in the console.
var ErrUnknownRole = errors.New("auth: unknown role")

// User is the account returned by the backend login endpoint.
type User struct {
	ID       backend.ID `json:"id"`
	Username string     `json:"username"`
	Role     string     `json:"role"`
	Name     string     `json:"name"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Identity is an authenticated operator ready to be stored in the session.
type Identity struct {
	Token     string
	User      shared.SessionUser
	ExpiresAt time.Time
}
