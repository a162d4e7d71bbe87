package dashboard

import (
	"context"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Repository reads the dashboard endpoints.
type Repository interface {
	Metrics(ctx context.Context) (Metrics, error)
	Sales(ctx context.Context) ([]SalesPoint, error)
	Production(ctx context.Context) ([]ProductionPoint, error)
	Distribution(ctx context.Context) ([]DistributionSlice, error)
	Activities(ctx context.Context) ([]Activity, error)
}

// BackendRepository talks to /dashboard endpoints.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository builds a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

// Metrics returns the headline cards.
func (r *BackendRepository) Metrics(ctx context.Context) (Metrics, error) {
	var out Metrics
	err := r.client.Get(ctx, "/dashboard/"+SectionMetrics, &out)
	return out, err
}

// Sales returns revenue and order counts by month.
func (r *BackendRepository) Sales(ctx context.Context) ([]SalesPoint, error) {
	var out []SalesPoint
	err := r.client.Get(ctx, "/dashboard/"+SectionSales, &out)
	return out, err
}

// Production returns monthly output against target.
func (r *BackendRepository) Production(ctx context.Context) ([]ProductionPoint, error) {
	var out []ProductionPoint
	err := r.client.Get(ctx, "/dashboard/"+SectionProduction, &out)
	return out, err
}

// Distribution returns the stock share per location.
func (r *BackendRepository) Distribution(ctx context.Context) ([]DistributionSlice, error) {
	var out []DistributionSlice
	err := r.client.Get(ctx, "/dashboard/"+SectionDistribution, &out)
	return out, err
}

// Activities returns the recent activity feed.
func (r *BackendRepository) Activities(ctx context.Context) ([]Activity, error) {
	var out []Activity
	err := r.client.Get(ctx, "/dashboard/"+SectionActivities, &out)
	return out, err
}
