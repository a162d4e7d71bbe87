package production

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// MsgRunRequired is shown when the run form lacks a product or run count.
const MsgRunRequired = "Select a product and at least one run"

// Service holds production rules that run before any backend call.
type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs the production service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(), now: time.Now}
}

// Board loads products, lines, active runs and archived runs concurrently and
// lists the runs of view matching search.
func (s *Service) Board(ctx context.Context, view, search string) (Board, error) {
	if view != ViewArchived {
		view = ViewActive
	}
	var (
		products []Product
		lines    []Line
		active   []Run
		archived []Run
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.repo.Products(gctx)
		return wrap("products", err)
	})
	g.Go(func() (err error) {
		lines, err = s.repo.Lines(gctx)
		return wrap("lines", err)
	})
	g.Go(func() (err error) {
		active, err = s.repo.Runs(gctx)
		return wrap("runs", err)
	})
	g.Go(func() (err error) {
		archived, err = s.repo.ArchivedRuns(gctx)
		return wrap("archived runs", err)
	})
	if err := g.Wait(); err != nil {
		return Board{View: view}, err
	}
	runs := active
	if view == ViewArchived {
		runs = archived
	}
	return Board{
		View:     view,
		Products: products,
		Lines:    lines,
		Runs:     FilterRuns(runs, search),
		Summary:  Summarize(active, archived),
	}, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("production: %s: %w", what, err)
}

// FilterRuns keeps runs whose number, product or assignee contains search.
func FilterRuns(runs []Run, search string) []Run {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return runs
	}
	out := make([]Run, 0, len(runs))
	for _, run := range runs {
		if strings.Contains(strings.ToLower(run.RunNumber), needle) ||
			strings.Contains(strings.ToLower(run.ProductName), needle) ||
			strings.Contains(strings.ToLower(run.AssignedTo), needle) {
			out = append(out, run)
		}
	}
	return out
}

// Summarize computes the production cards.
func Summarize(active, archived []Run) Summary {
	sum := Summary{Completed: len(archived)}
	for _, run := range active {
		if run.Status == RunInProgress {
			sum.InProgress++
		}
		if run.MachineStopped {
			sum.StoppedMachine++
		}
	}
	for _, run := range archived {
		sum.TotalProduced += run.Quantity
	}
	return sum
}

// Requirements scales a product's recipe to runs.
func Requirements(product Product, runs int) []Requirement {
	if runs < 1 {
		runs = 1
	}
	factor := decimal.NewFromInt(int64(runs))
	out := make([]Requirement, 0, len(product.Recipe))
	for _, item := range product.Recipe {
		out = append(out, Requirement{
			IngredientName: item.IngredientName,
			PerRun:         item.Quantity,
			Total:          item.Quantity.Mul(factor),
			Unit:           item.Unit,
		})
	}
	return out
}

// Product returns one product with its recipe.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return Product{}, wrap("products", err)
	}
	for _, p := range products {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

// FormOptions loads the products and lines offered on the run form.
func (s *Service) FormOptions(ctx context.Context) ([]Product, []Line, error) {
	var (
		products []Product
		lines    []Line
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.repo.Products(gctx)
		return wrap("products", err)
	})
	g.Go(func() (err error) {
		lines, err = s.repo.Lines(gctx)
		return wrap("lines", err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return products, lines, nil
}

// CreateRun validates in and schedules runs × unitsPerRun units. It returns
// the generated run number.
func (s *Service) CreateRun(ctx context.Context, in RunInput) (string, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.StartDate = strings.TrimSpace(in.StartDate)
	if err := s.validate.Struct(in); err != nil {
		return "", shared.NewValidationError("", MsgRunRequired)
	}
	now := s.now()
	if in.StartDate == "" {
		in.StartDate = now.Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", in.StartDate); err != nil {
		return "", shared.NewValidationError("start_date", "Start date must be YYYY-MM-DD")
	}
	product, err := s.Product(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.NewValidationError("product_id", "Select a product from the list")
		}
		return "", err
	}
	unitsPerRun := product.UnitsPerRun
	if unitsPerRun < 1 {
		unitsPerRun = 1
	}
	number := RunNumber(now)
	payload := createRunPayload{
		ProductID:        product.ID.String(),
		RunNumber:        number,
		ProductionLineID: strings.TrimSpace(in.LineID),
		Quantity:         in.Runs * unitsPerRun,
		Status:           RunPlanned,
		MachineStopped:   false,
		StartDate:        in.StartDate,
		AssignedTo:       strings.TrimSpace(in.AssignedTo),
	}
	if err := s.repo.CreateRun(ctx, payload); err != nil {
		return "", fmt.Errorf("production: create run: %w", err)
	}
	return number, nil
}

// RunNumber builds the run number for a run created at t.
func RunNumber(t time.Time) string {
	return "RUN-" + strconv.FormatInt(t.UnixMilli(), 10)
}

// UpdateRunStatus moves the run with runNumber to status.
func (s *Service) UpdateRunStatus(ctx context.Context, runNumber, status string) error {
	if !contains(RunStatuses, status) {
		return shared.NewValidationError("status", "Choose a valid run status")
	}
	if strings.TrimSpace(runNumber) == "" {
		return shared.ErrNotFound
	}
	if err := s.repo.UpdateRunStatus(ctx, runNumber, status); err != nil {
		return fmt.Errorf("production: run %s status: %w", runNumber, err)
	}
	return nil
}

// SetMachineStatus stops or resumes the machine of run id. The reason is
// optional and only sent when stopping.
func (s *Service) SetMachineStatus(ctx context.Context, id string, stopped bool, reason string) error {
	if strings.TrimSpace(id) == "" {
		return shared.ErrNotFound
	}
	payload := machinePayload{MachineStopped: stopped}
	if stopped {
		payload.Reason = strings.TrimSpace(reason)
	}
	if err := s.repo.SetMachineStatus(ctx, backend.ID(id), payload); err != nil {
		return fmt.Errorf("production: machine status %s: %w", id, err)
	}
	return nil
}

// UpdateLineStatus changes line id to status.
func (s *Service) UpdateLineStatus(ctx context.Context, id, status string) error {
	if !contains(LineStatuses, status) {
		return shared.NewValidationError("status", "Choose a valid line status")
	}
	if strings.TrimSpace(id) == "" {
		return shared.ErrNotFound
	}
	if err := s.repo.UpdateLineStatus(ctx, backend.ID(id), status); err != nil {
		return fmt.Errorf("production: line %s status: %w", id, err)
	}
	return nil
}

// Run finds an active run by id.
func (s *Service) Run(ctx context.Context, id string) (Run, error) {
	runs, err := s.repo.Runs(ctx)
	if err != nil {
		return Run{}, wrap("runs", err)
	}
	for _, run := range runs {
		if run.ID.String() == id {
			return run, nil
		}
	}
	return Run{}, shared.ErrNotFound
}
