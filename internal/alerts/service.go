package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// MsgCreateRequired is shown when the manual alert form is incomplete.
const MsgCreateRequired = "Title, type and severity are required"

// Service applies alert filters and form rules.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService constructs the alerts service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, validate: validator.New()}
}

// Board loads alerts and cameras concurrently, filters the alerts and sorts
// them newest first. The summary covers every alert, not just the filtered ones.
func (s *Service) Board(ctx context.Context, filter Filter) (Board, error) {
	var (
		alerts  []Alert
		cameras []Camera
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		alerts, err = s.repo.List(gctx)
		if err != nil {
			return fmt.Errorf("alerts: list: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		cameras, err = s.repo.Cameras(gctx)
		if err != nil {
			return fmt.Errorf("alerts: cameras: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Board{}, err
	}
	return Board{
		Alerts:  SortNewestFirst(FilterAlerts(alerts, filter)),
		Cameras: cameras,
		Summary: Summarize(alerts, cameras),
	}, nil
}

// FilterAlerts keeps alerts matching every non-empty filter field.
func FilterAlerts(alerts []Alert, filter Filter) []Alert {
	camera := normalize(filter.Camera)
	severity := normalize(filter.Severity)
	status := normalize(filter.Status)
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if camera != "" && a.CameraID.String() != camera {
			continue
		}
		if severity != "" && a.Severity != severity {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return out
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, FilterAll) {
		return ""
	}
	return v
}

// SortNewestFirst orders alerts by timestamp, newest first, in place.
func SortNewestFirst(alerts []Alert) []Alert {
	sort.SliceStable(alerts, func(i, j int) bool {
		return shared.NewestFirst(alerts[i].Timestamp, alerts[j].Timestamp)
	})
	return alerts
}

// Summarize counts alerts and cameras for the header cards.
func Summarize(alerts []Alert, cameras []Camera) Summary {
	sum := Summary{Total: len(alerts)}
	for _, a := range alerts {
		switch a.Status {
		case StatusNew:
			sum.New++
		case StatusResolved:
			sum.Resolved++
		}
	}
	for _, c := range cameras {
		if c.Status == CameraActive {
			sum.ActiveCameras++
		}
		if c.AIEnabled {
			sum.AIEnabled++
		}
	}
	return sum
}

// UpdateStatus acknowledges or resolves alert id.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if status != StatusAcknowledged && status != StatusResolved {
		return shared.NewValidationError("status", "Alerts can only be acknowledged or resolved")
	}
	if strings.TrimSpace(id) == "" {
		return shared.ErrNotFound
	}
	if err := s.repo.UpdateStatus(ctx, backend.ID(id), status); err != nil {
		return fmt.Errorf("alerts: status %s: %w", id, err)
	}
	return nil
}

// Create raises a manual alert.
func (s *Service) Create(ctx context.Context, in CreateInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CameraID = strings.TrimSpace(in.CameraID)
	if err := s.validate.Struct(in); err != nil {
		return shared.NewValidationError("", MsgCreateRequired)
	}
	payload := CreatePayload{
		Type:        in.Type,
		Severity:    in.Severity,
		Title:       in.Title,
		Description: in.Description,
	}
	if in.CameraID != "" {
		payload.CameraID = &in.CameraID
	}
	if err := s.repo.Create(ctx, payload); err != nil {
		return fmt.Errorf("alerts: create: %w", err)
	}
	s.logger.Info("manual alert raised", slog.String("type", in.Type), slog.String("severity", in.Severity))
	return nil
}

// Cameras returns the camera list for the create form.
func (s *Service) Cameras(ctx context.Context) ([]Camera, error) {
	cameras, err := s.repo.Cameras(ctx)
	if err != nil {
		return nil, fmt.Errorf("alerts: cameras: %w", err)
	}
	return cameras, nil
}

// RelativeTime renders t relative to now the way the alert feed shows it.
func RelativeTime(now, t time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return strconv.Itoa(minutes) + " min ago"
	}
	hours := minutes / 60
	switch {
	case hours == 1:
		return "1 hour ago"
	case hours < 24:
		return strconv.Itoa(hours) + " hours ago"
	}
	return t.Format("Jan 2, 2006")
}
