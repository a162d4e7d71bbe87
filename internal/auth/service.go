package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// Service wraps authentication rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Authenticate signs in through the backend and returns the identity to keep
// in the session. Rejected credentials map to shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Identity{}, shared.ErrInvalidCredentials
	}
	res, err := s.repo.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrBadRequest) || errors.Is(err, backend.ErrNotFound) {
			return Identity{}, shared.ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("auth: login: %w", err)
	}
	if res.Token == "" {
		return Identity{}, errors.New("auth: backend returned no token")
	}
	expiresAt, _ := TokenExpiry(res.Token)
	if !expiresAt.IsZero() && !expiresAt.After(s.now()) {
		return Identity{}, ErrTokenExpired
	}
	user := shared.SessionUser{
		ID:       res.User.ID.String(),
		Username: res.User.Username,
		Name:     res.User.Name,
		Role:     shared.NormalizeRole(res.User.Role),
	}
	if !shared.KnownRole(user.Role) {
		return Identity{}, fmt.Errorf("%w %q", ErrUnknownRole, res.User.Role)
	}
	if user.Username == "" {
		user.Username = username
	}
	return Identity{Token: res.Token, User: user, ExpiresAt: expiresAt}, nil
}

// Expired reports whether token carries an exp claim in the past.
func (s *Service) Expired(token string) bool {
	exp, ok := TokenExpiry(token)
	return ok && !exp.After(s.now())
}

// TokenExpiry reads the exp claim without verifying the signature; the
// backend verifies tokens on every call. Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
