package production

import (
	"context"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Repository is the slice of the backend API the production page uses.
type Repository interface {
	Products(ctx context.Context) ([]Product, error)
	Lines(ctx context.Context) ([]Line, error)
	Runs(ctx context.Context) ([]Run, error)
	ArchivedRuns(ctx context.Context) ([]Run, error)
	CreateRun(ctx context.Context, payload createRunPayload) error
	UpdateRunStatus(ctx context.Context, runNumber, status string) error
	SetMachineStatus(ctx context.Context, runID backend.ID, payload machinePayload) error
	UpdateLineStatus(ctx context.Context, lineID backend.ID, status string) error
}

// BackendRepository talks to /production endpoints.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository builds a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

// Products returns products with their recipes.
func (r *BackendRepository) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := r.client.Get(ctx, "/production/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Lines returns production lines.
func (r *BackendRepository) Lines(ctx context.Context) ([]Line, error) {
	var out []Line
	if err := r.client.Get(ctx, "/production/lines", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Runs returns active runs.
func (r *BackendRepository) Runs(ctx context.Context) ([]Run, error) {
	var out []Run
	if err := r.client.Get(ctx, "/production/runs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ArchivedRuns returns completed runs.
func (r *BackendRepository) ArchivedRuns(ctx context.Context) ([]Run, error) {
	var out []Run
	if err := r.client.Get(ctx, "/production/archived", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRun schedules a run.
func (r *BackendRepository) CreateRun(ctx context.Context, payload createRunPayload) error {
	return r.client.Post(ctx, "/production/runs", payload, nil)
}

// UpdateRunStatus moves a run, addressed by run number, to status.
func (r *BackendRepository) UpdateRunStatus(ctx context.Context, runNumber, status string) error {
	return r.client.Put(ctx, "/production/runs/"+backend.ID(runNumber).Path(), statusPayload{Status: status}, nil)
}

// SetMachineStatus stops or resumes the machine of a run.
func (r *BackendRepository) SetMachineStatus(ctx context.Context, runID backend.ID, payload machinePayload) error {
	return r.client.Post(ctx, "/production/runs/"+runID.Path()+"/machine-status", payload, nil)
}

// UpdateLineStatus changes a line's status.
func (r *BackendRepository) UpdateLineStatus(ctx context.Context, lineID backend.ID, status string) error {
	return r.client.Put(ctx, "/production/lines/"+lineID.Path(), statusPayload{Status: status}, nil)
}
