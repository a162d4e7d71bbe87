package sales

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

const formLineRows = 5

// Handler manages sales endpoints.
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

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin())
		r.Get("/archive", h.showArchive)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePage(shared.PageSales))
		r.Get("/", h.showIndex)
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.showOrder)
		r.Post("/{id}/status", h.handleStatus)
	})
}

type indexPageData struct {
	Orders   []Order
	Summary  Summary
	Search   string
	Status   string
	Statuses []string
	Error    string
}

type lineForm struct {
	ProductID string
	Quantity  string
}

type orderFormData struct {
	CustomerName  string
	CustomerEmail string
	DeliveryDate  string
	Lines         []lineForm
	Products      []Product
	Errors        map[string]string
}

type orderPageData struct {
	Order    Order
	Statuses []string
}

type archivePageData struct {
	Entries    []ArchiveEntry
	Pagination shared.Pagination
	Error      string
}

func (h *Handler) showIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := indexPageData{
		Search:   q.Get("q"),
		Status:   q.Get("status"),
		Statuses: Statuses,
	}
	if data.Status == "" {
		data.Status = "all"
	}
	board, err := h.service.Board(r.Context(), Filter{Search: data.Search, Status: data.Status})
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("list orders", slog.Any("error", err), slog.String("path", r.URL.Path))
		data.Error = shared.UserSafeMessage(err)
	}
	data.Orders = board.Orders
	data.Summary = board.Summary
	h.render(w, r, http.StatusOK, "pages/sales/index.html", "Sales", data)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	data := orderFormData{Lines: padLines(nil), Errors: map[string]string{}}
	products, err := h.service.Products(r.Context())
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("load products", slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
	}
	data.Products = products
	h.render(w, r, http.StatusOK, "pages/sales/form.html", "Create order", data)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := orderFormData{
		CustomerName:  strings.TrimSpace(r.PostFormValue("customer_name")),
		CustomerEmail: strings.TrimSpace(r.PostFormValue("customer_email")),
		DeliveryDate:  strings.TrimSpace(r.PostFormValue("delivery_date")),
	}
	productIDs := r.PostForm["product_id"]
	quantities := r.PostForm["quantity"]
	input := CreateInput{
		CustomerName:  form.CustomerName,
		CustomerEmail: form.CustomerEmail,
		DeliveryDate:  form.DeliveryDate,
	}
	for i, pid := range productIDs {
		qty := ""
		if i < len(quantities) {
			qty = strings.TrimSpace(quantities[i])
		}
		pid = strings.TrimSpace(pid)
		form.Lines = append(form.Lines, lineForm{ProductID: pid, Quantity: qty})
		if pid == "" {
			continue
		}
		input.Lines = append(input.Lines, LineInput{ProductID: pid, Quantity: parseQty(qty)})
	}

	number, err := h.service.Create(r.Context(), input)
	if err == nil {
		shared.AddFlash(r.Context(), shared.FlashSuccess, "Order "+number+" created")
		http.Redirect(w, r, "/sales", http.StatusSeeOther)
		return
	}
	if auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	if !errors.Is(err, shared.ErrValidation) {
		h.logger.Error("create order", slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	form.Errors = shared.FormErrors(err)
	form.Lines = padLines(form.Lines)
	form.Products, _ = h.service.Products(r.Context())
	h.render(w, r, http.StatusBadRequest, "pages/sales/form.html", "Create order", form)
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("load order", slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
		http.Redirect(w, r, "/sales", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/sales/detail.html", "Order "+order.OrderNumber, orderPageData{Order: order, Statuses: Statuses})
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
			h.logger.Error("update order status", slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
		http.Redirect(w, r, "/sales", http.StatusSeeOther)
		return
	}
	msg := "Order marked " + view.Humanize(status)
	if status == StatusCompleted || status == StatusCancelled {
		msg += " and moved to the archive"
	}
	shared.AddFlash(r.Context(), shared.FlashSuccess, msg)
	http.Redirect(w, r, "/sales", http.StatusSeeOther)
}

func (h *Handler) showArchive(w http.ResponseWriter, r *http.Request) {
	data := archivePageData{}
	page, err := h.service.Archive(r.Context(), shared.PageFromQuery(r.URL.Query()))
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("orders archive", slog.Any("error", err), slog.String("path", r.URL.Path))
		data.Error = shared.UserSafeMessage(err)
	}
	data.Entries = page.Entries
	data.Pagination = page.Pagination
	h.render(w, r, http.StatusOK, "pages/sales/archive.html", "Order archive", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.NewPage(r, h.csrf, title, data)
	if err := h.templates.RenderStatus(w, status, name, page); err != nil {
		h.logger.Error("render sales", slog.String("template", name), slog.Any("error", err))
	}
}

func padLines(lines []lineForm) []lineForm {
	for len(lines) < formLineRows {
		lines = append(lines, lineForm{Quantity: "1"})
	}
	return lines
}

func parseQty(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
