package inventory

import (
	"context"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Repository is the slice of the backend API the inventory page uses.
type Repository interface {
	List(ctx context.Context, warehouse string) ([]Item, error)
	Create(ctx context.Context, warehouse string, payload createPayload) error
	Update(ctx context.Context, id backend.ID, payload updatePayload) error
	Delete(ctx context.Context, id backend.ID) error
	Transfer(ctx context.Context, payload transferPayload) error
	Archive(ctx context.Context) ([]ArchiveEntry, error)
}

// BackendRepository talks to /inventory endpoints.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository builds a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

// List returns the items of a warehouse.
func (r *BackendRepository) List(ctx context.Context, warehouse string) ([]Item, error) {
	var items []Item
	if err := r.client.Get(ctx, "/inventory/"+warehouse, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create adds an item to a warehouse.
func (r *BackendRepository) Create(ctx context.Context, warehouse string, payload createPayload) error {
	return r.client.Post(ctx, "/inventory/"+warehouse, payload, nil)
}

// Update edits an item in place.
func (r *BackendRepository) Update(ctx context.Context, id backend.ID, payload updatePayload) error {
	return r.client.Put(ctx, "/inventory/"+id.Path(), payload, nil)
}

// Delete removes an item.
func (r *BackendRepository) Delete(ctx context.Context, id backend.ID) error {
	return r.client.Delete(ctx, "/inventory/"+id.Path())
}

// Transfer moves stock between warehouses.
func (r *BackendRepository) Transfer(ctx context.Context, payload transferPayload) error {
	return r.client.Post(ctx, "/inventory/transfer", payload, nil)
}

// Archive returns the edit history.
func (r *BackendRepository) Archive(ctx context.Context) ([]ArchiveEntry, error) {
	var entries []ArchiveEntry
	if err := r.client.Get(ctx, "/inventory/archive", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
