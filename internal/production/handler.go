package production

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/companyhub/internal/auth"
	"github.com/odyssey-erp/companyhub/internal/rbac"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
)

// Handler serves the production board.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePage(shared.PageProduction))
		r.Get("/", h.showIndex)
		r.Get("/runs/new", h.showRunForm)
		r.Post("/runs", h.handleCreateRun)
		r.Get("/products/{id}", h.showRecipe)
		r.Post("/runs/{runNumber}/status", h.handleRunStatus)
		r.Get("/runs/{id}/stop", h.showStop)
		r.Post("/runs/{id}/machine-status", h.handleMachineStatus)
		r.Post("/lines/{id}/status", h.handleLineStatus)
	})
}

type indexPageData struct {
	Board        Board
	Search       string
	RunStatuses  []string
	LineStatuses []string
	Error        string
}

type runFormData struct {
	Products    []Product
	Lines       []Line
	ProductID   string
	LineID      string
	Runs        string
	StartDate   string
	AssignedTo  string
	Preview     *Product
	PreviewQty  int
	Requirement []Requirement
	Errors      map[string]string
}

type recipePageData struct {
	Product      Product
	Runs         int
	Requirements []Requirement
}

type stopPageData struct {
	Run Run
}

func (h *Handler) showIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := indexPageData{
		Search:       q.Get("q"),
		RunStatuses:  RunStatuses,
		LineStatuses: LineStatuses,
	}
	board, err := h.service.Board(r.Context(), q.Get("view"), data.Search)
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("production board", slog.Any("error", err), slog.String("path", r.URL.Path))
		data.Error = shared.UserSafeMessage(err)
	}
	data.Board = board
	h.render(w, r, http.StatusOK, "pages/production/index.html", "Production", data)
}

func (h *Handler) showRunForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := runFormData{
		ProductID: q.Get("product"),
		Runs:      q.Get("runs"),
		Errors:    map[string]string{},
	}
	if data.Runs == "" {
		data.Runs = "1"
	}
	if !h.loadOptions(w, r, &data) {
		return
	}
	h.render(w, r, http.StatusOK, "pages/production/run_form.html", "Schedule run", data)
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := runFormData{
		ProductID:  strings.TrimSpace(r.PostFormValue("product_id")),
		LineID:     strings.TrimSpace(r.PostFormValue("line_id")),
		Runs:       strings.TrimSpace(r.PostFormValue("runs")),
		StartDate:  strings.TrimSpace(r.PostFormValue("start_date")),
		AssignedTo: strings.TrimSpace(r.PostFormValue("assigned_to")),
	}
	number, err := h.service.CreateRun(r.Context(), RunInput{
		ProductID:  form.ProductID,
		LineID:     form.LineID,
		Runs:       shared.FormInt(r.PostForm, "runs", 0),
		StartDate:  form.StartDate,
		AssignedTo: form.AssignedTo,
	})
	if err == nil {
		shared.AddFlash(r.Context(), shared.FlashSuccess, "Production run "+number+" scheduled")
		http.Redirect(w, r, "/production", http.StatusSeeOther)
		return
	}
	if auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	if !errors.Is(err, shared.ErrValidation) {
		h.logger.Error("create run", slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	form.Errors = shared.FormErrors(err)
	if !h.loadOptions(w, r, &form) {
		return
	}
	h.render(w, r, http.StatusBadRequest, "pages/production/run_form.html", "Schedule run", form)
}

// loadOptions fills the product and line pickers plus the requirement
// preview. It reports false when the session ended.
func (h *Handler) loadOptions(w http.ResponseWriter, r *http.Request, data *runFormData) bool {
	products, lines, err := h.service.FormOptions(r.Context())
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return false
		}
		h.logger.Error("run form options", slog.Any("error", err))
		if data.Errors["general"] == "" {
			data.Errors["general"] = shared.UserSafeMessage(err)
		}
		return true
	}
	data.Products = products
	data.Lines = lines
	runs, convErr := strconv.Atoi(data.Runs)
	if convErr != nil || runs < 1 {
		runs = 1
	}
	for i := range products {
		if products[i].ID.String() == data.ProductID {
			p := products[i]
			data.Preview = &p
			data.PreviewQty = runs * max(p.UnitsPerRun, 1)
			data.Requirement = Requirements(p, runs)
			break
		}
	}
	return true
}

func (h *Handler) showRecipe(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("load recipe", slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
		http.Redirect(w, r, "/production", http.StatusSeeOther)
		return
	}
	runs := shared.FormInt(r.URL.Query(), "runs", 1)
	if runs < 1 {
		runs = 1
	}
	h.render(w, r, http.StatusOK, "pages/production/recipe.html", product.Name+" recipe", recipePageData{
		Product:      product,
		Runs:         runs,
		Requirements: Requirements(product, runs),
	})
}

func (h *Handler) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	runNumber := chi.URLParam(r, "runNumber")
	status := strings.TrimSpace(r.PostFormValue("status"))
	if err := h.service.UpdateRunStatus(r.Context(), runNumber, status); err != nil {
		h.fail(w, r, "update run status", err)
		return
	}
	msg := "Run " + runNumber + " marked " + view.Humanize(status)
	if status == RunCompleted {
		msg += " and archived"
	}
	shared.AddFlash(r.Context(), shared.FlashSuccess, msg)
	http.Redirect(w, r, "/production", http.StatusSeeOther)
}

func (h *Handler) showStop(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "load run", err)
		return
	}
	h.render(w, r, http.StatusOK, "pages/production/stop.html", "Stop machine", stopPageData{Run: run})
}

func (h *Handler) handleMachineStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	stopped := r.PostFormValue("stopped") == "true"
	err := h.service.SetMachineStatus(r.Context(), chi.URLParam(r, "id"), stopped, r.PostFormValue("reason"))
	if err != nil {
		h.fail(w, r, "machine status", err)
		return
	}
	msg := "Machine resumed"
	if stopped {
		msg = "Machine stopped"
	}
	shared.AddFlash(r.Context(), shared.FlashSuccess, msg)
	http.Redirect(w, r, "/production", http.StatusSeeOther)
}

func (h *Handler) handleLineStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	status := strings.TrimSpace(r.PostFormValue("status"))
	if err := h.service.UpdateLineStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		h.fail(w, r, "update line status", err)
		return
	}
	shared.AddFlash(r.Context(), shared.FlashSuccess, "Line marked "+view.Humanize(status))
	http.Redirect(w, r, "/production", http.StatusSeeOther)
}

// fail flashes err and returns to the board.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	if !errors.Is(err, shared.ErrValidation) && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
	http.Redirect(w, r, "/production", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.NewPage(r, h.csrf, title, data)
	if err := h.templates.RenderStatus(w, status, name, page); err != nil {
		h.logger.Error("render production", slog.String("template", name), slog.Any("error", err))
	}
}
