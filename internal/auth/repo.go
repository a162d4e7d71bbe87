package auth

import (
	"context"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Repository defines the backend operations used by the auth module.
type Repository interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
}

// BackendRepository implements Repository over the REST backend.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository constructs a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (r *BackendRepository) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	err := r.client.Post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &res)
	return res, err
}
