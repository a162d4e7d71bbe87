package sales

import (
	"context"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

const productsCacheKey = "catalog:products"

// Repository is the slice of the backend API the sales page uses.
type Repository interface {
	ListOrders(ctx context.Context) ([]Order, error)
	CreateOrder(ctx context.Context, payload createPayload) error
	UpdateStatus(ctx context.Context, id backend.ID, status string) error
	Archive(ctx context.Context) ([]ArchiveEntry, error)
	Revenue(ctx context.Context) (revenueResponse, error)
	Products(ctx context.Context) ([]Product, error)
	ForgetProducts()
}

// BackendRepository talks to /orders, /revenue and /products.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository builds a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

// ListOrders returns the open orders.
func (r *BackendRepository) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := r.client.Get(ctx, "/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder submits a new order.
func (r *BackendRepository) CreateOrder(ctx context.Context, payload createPayload) error {
	return r.client.Post(ctx, "/orders", payload, nil)
}

// UpdateStatus moves an order through its workflow.
func (r *BackendRepository) UpdateStatus(ctx context.Context, id backend.ID, status string) error {
	return r.client.Put(ctx, "/orders/"+id.Path()+"/status", statusPayload{Status: status}, nil)
}

// Archive returns completed and cancelled orders.
func (r *BackendRepository) Archive(ctx context.Context) ([]ArchiveEntry, error) {
	var entries []ArchiveEntry
	if err := r.client.Get(ctx, "/orders/archive", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Revenue returns the backend's revenue total.
func (r *BackendRepository) Revenue(ctx context.Context) (revenueResponse, error) {
	var out revenueResponse
	err := r.client.Get(ctx, "/revenue", &out)
	return out, err
}

// Products returns the catalogue through the client's reference cache.
func (r *BackendRepository) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.client.Cached(ctx, productsCacheKey, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ForgetProducts drops the cached catalogue so the next Products call refetches.
func (r *BackendRepository) ForgetProducts() {
	r.client.Invalidate(productsCacheKey)
}
