package dashboard

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/companyhub/internal/auth"
	"github.com/odyssey-erp/companyhub/internal/rbac"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
)

// PDFRenderer converts an HTML document into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// Handler serves the dashboard and its exports.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	pdf       PDFRenderer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac, pdf: pdf}
}

// MountRoutes registers dashboard routes. Every route is admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin())
		r.Get("/", h.showIndex)
		r.Get("/export.csv", h.exportCSV)
		r.Get("/export.pdf", h.exportPDF)
	})
}

func (h *Handler) showIndex(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context(), r.URL.Query().Get("refresh") == "1")
	if err != nil && auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	page := view.NewPage(r, h.csrf, "Dashboard", ov)
	if err := h.templates.Render(w, "pages/dashboard/index.html", page); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
	}
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context(), false)
	if err != nil && auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ov); err != nil {
		h.logger.Error("dashboard csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=dashboard-"+ov.GeneratedAt.Format("20060102")+".csv")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context(), false)
	if err != nil && auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	var html bytes.Buffer
	page := view.TemplateData{Title: "Dashboard overview", Data: ov}
	if err := h.templates.Execute(&html, "pages/dashboard/print.html", page); err != nil {
		h.logger.Error("render dashboard print", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), html.Bytes())
	if err != nil {
		h.logger.Error("dashboard pdf", slog.Any("error", err))
		shared.AddFlash(r.Context(), shared.FlashError, "The PDF export is unavailable right now. Please try again.")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=dashboard-"+ov.GeneratedAt.Format("20060102")+".pdf")
	_, _ = w.Write(pdf)
}
