package alerts

import (
	"context"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

const camerasCacheKey = "catalog:cameras"

// Repository is the slice of the backend API the alerts page uses.
type Repository interface {
	List(ctx context.Context) ([]Alert, error)
	Cameras(ctx context.Context) ([]Camera, error)
	UpdateStatus(ctx context.Context, id backend.ID, status string) error
	Create(ctx context.Context, payload CreatePayload) error
}

// BackendRepository talks to /alerts and /cameras.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository builds a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

// List returns every alert.
func (r *BackendRepository) List(ctx context.Context) ([]Alert, error) {
	var out []Alert
	if err := r.client.Get(ctx, "/alerts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cameras returns camera feeds from the reference cache.
func (r *BackendRepository) Cameras(ctx context.Context) ([]Camera, error) {
	var out []Camera
	if err := r.client.Cached(ctx, camerasCacheKey, "/cameras", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves an alert to status.
func (r *BackendRepository) UpdateStatus(ctx context.Context, id backend.ID, status string) error {
	return r.client.Put(ctx, "/alerts/"+id.Path()+"/status", statusPayload{Status: status}, nil)
}

// Create raises an alert.
func (r *BackendRepository) Create(ctx context.Context, payload CreatePayload) error {
	return r.client.Post(ctx, "/alerts", payload, nil)
}
