package alerts

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/companyhub/internal/auth"
	"github.com/odyssey-erp/companyhub/internal/rbac"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
)

// Handler serves the alerts page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	now       func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac, now: time.Now}
}

// MountRoutes registers alert routes. Every route is admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin())
		r.Get("/", h.showIndex)
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.handleCreate)
		r.Post("/{id}/status", h.handleStatus)
	})
}

type indexPageData struct {
	Board      Board
	Filter     Filter
	Severities []string
	Statuses   []string
	Error      string
	now        time.Time
}

// When renders an alert timestamp relative to the page load.
func (d indexPageData) When(a Alert) string {
	t, ok := a.Time()
	if !ok {
		return a.Timestamp
	}
	return RelativeTime(d.now, t)
}

type alertFormData struct {
	Type        string
	Severity    string
	Title       string
	Description string
	CameraID    string
	Types       []string
	Severities  []string
	Cameras     []Camera
	Errors      map[string]string
}

func (h *Handler) showIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := indexPageData{
		Filter: Filter{
			Camera:   defaultAll(q.Get("camera")),
			Severity: defaultAll(q.Get("severity")),
			Status:   defaultAll(q.Get("status")),
		},
		Severities: Severities,
		Statuses:   Statuses,
		now:        h.now(),
	}
	board, err := h.service.Board(r.Context(), data.Filter)
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("alerts board", slog.Any("error", err), slog.String("path", r.URL.Path))
		data.Error = shared.UserSafeMessage(err)
	}
	data.Board = board
	h.render(w, r, http.StatusOK, "pages/alerts/index.html", "Alerts", data)
}

func defaultAll(v string) string {
	if strings.TrimSpace(v) == "" {
		return FilterAll
	}
	return v
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	data := alertFormData{Type: TypeAnomaly, Severity: SeverityMedium, Errors: map[string]string{}}
	h.renderForm(w, r, http.StatusOK, data)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := alertFormData{
		Type:        strings.TrimSpace(r.PostFormValue("type")),
		Severity:    strings.TrimSpace(r.PostFormValue("severity")),
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		CameraID:    strings.TrimSpace(r.PostFormValue("camera_id")),
	}
	err := h.service.Create(r.Context(), CreateInput{
		Type:        form.Type,
		Severity:    form.Severity,
		Title:       form.Title,
		Description: form.Description,
		CameraID:    form.CameraID,
	})
	if err == nil {
		shared.AddFlash(r.Context(), shared.FlashSuccess, "Alert raised")
		http.Redirect(w, r, "/alerts", http.StatusSeeOther)
		return
	}
	if auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	if !errors.Is(err, shared.ErrValidation) {
		h.logger.Error("create alert", slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	form.Errors = shared.FormErrors(err)
	h.renderForm(w, r, http.StatusBadRequest, form)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, data alertFormData) {
	data.Types = Types
	data.Severities = Severities
	cameras, err := h.service.Cameras(r.Context())
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Warn("alert form cameras", slog.Any("error", err))
	}
	data.Cameras = cameras
	h.render(w, r, status, "pages/alerts/form.html", "Raise alert", data)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	status := strings.TrimSpace(r.PostFormValue("status"))
	if err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		if !errors.Is(err, shared.ErrValidation) {
			h.logger.Error("update alert status", slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
	} else {
		shared.AddFlash(r.Context(), shared.FlashSuccess, "Alert "+view.Humanize(status))
	}
	target := "/alerts"
	if q := r.PostFormValue("return"); strings.HasPrefix(q, "?") {
		target += q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.NewPage(r, h.csrf, title, data)
	if err := h.templates.RenderStatus(w, status, name, page); err != nil {
		h.logger.Error("render alerts", slog.String("template", name), slog.Any("error", err))
	}
}
