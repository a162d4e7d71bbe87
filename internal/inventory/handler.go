package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/companyhub/internal/auth"
	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/rbac"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
)

// Handler wires HTTP endpoints for the inventory page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePage(shared.PageInventory))
		r.Get("/", h.showIndex)
		r.Get("/stock-sheet.pdf", h.handleStockSheet)
		r.Get("/new", h.showAddForm)
		r.Post("/", h.handleAdd)
		r.Post("/transfer", h.handleTransfer)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.handleUpdate)
		r.Get("/{id}/delete", h.showDeleteForm)
		r.Post("/{id}/delete", h.handleDelete)
		r.Get("/{id}/transfer", h.showTransferForm)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin())
		r.Get("/archive", h.showArchive)
	})
}

type indexPageData struct {
	Warehouses []Warehouse
	Warehouse  string
	Label      string
	Search     string
	Items      []Item
	Summary    Summary
	Error      string
}

type itemFormData struct {
	Warehouse  string
	Label      string
	ItemID     string
	Editing    bool
	ProductID  string
	SKU        string
	Quantity   string
	MinStock   string
	Price      string
	ExpiryDate string
	Location   string
	Errors     map[string]string
}

type deletePageData struct {
	Warehouse string
	Item      Item
}

type transferPageData struct {
	Warehouse  string
	Label      string
	Item       Item
	Warehouses []Warehouse
	Target     string
	Qty        string
	Errors     map[string]string
}

type archivePageData struct {
	Entries    []ArchiveEntry
	Pagination shared.Pagination
	Error      string
}

func warehouseParam(values url.Values) string {
	wh := strings.TrimSpace(values.Get("warehouse"))
	if wh == "" {
		return WarehouseRawMaterials
	}
	return wh
}

func listPath(warehouse string) string {
	return "/inventory?warehouse=" + url.QueryEscape(warehouse)
}

func (h *Handler) showIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := indexPageData{
		Warehouses: Warehouses(),
		Warehouse:  warehouseParam(q),
		Search:     q.Get("q"),
	}
	if !ValidWarehouse(data.Warehouse) {
		data.Warehouse = WarehouseRawMaterials
	}
	data.Label = WarehouseLabel(data.Warehouse)
	stock, err := h.service.Stock(r.Context(), data.Warehouse, data.Search)
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("list inventory", slog.Any("error", err), slog.String("path", r.URL.Path))
		data.Error = shared.UserSafeMessage(err)
	}
	data.Items = stock.Items
	data.Summary = stock.Summary
	h.render(w, r, http.StatusOK, "pages/inventory/index.html", data.Label, data)
}

func (h *Handler) showAddForm(w http.ResponseWriter, r *http.Request) {
	wh := warehouseParam(r.URL.Query())
	if !ValidWarehouse(wh) {
		http.NotFound(w, r)
		return
	}
	data := itemFormData{Warehouse: wh, Label: WarehouseLabel(wh), MinStock: "0", Price: "0", Errors: map[string]string{}}
	h.render(w, r, http.StatusOK, "pages/inventory/form.html", "Add item", data)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := formFromValues(r.PostForm)
	input := AddInput{
		ProductID:  form.ProductID,
		SKU:        form.SKU,
		Quantity:   shared.FormInt(r.PostForm, "quantity", 0),
		MinStock:   shared.FormInt(r.PostForm, "min_stock", 0),
		Price:      shared.FormDecimal(r.PostForm, "price"),
		ExpiryDate: form.ExpiryDate,
		Location:   form.Location,
	}
	if err := h.service.Add(r.Context(), form.Warehouse, input); err != nil {
		if errors.Is(err, ErrInvalidWarehouse) {
			http.NotFound(w, r)
			return
		}
		h.failForm(w, r, err, "Add item", form)
		return
	}
	shared.AddFlash(r.Context(), shared.FlashSuccess, "Item added to "+form.Label)
	http.Redirect(w, r, listPath(form.Warehouse), http.StatusSeeOther)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	wh := warehouseParam(r.URL.Query())
	item, ok := h.lookup(w, r, wh)
	if !ok {
		return
	}
	data := itemFormData{
		Warehouse:  wh,
		Label:      WarehouseLabel(wh),
		ItemID:     item.ID.String(),
		Editing:    true,
		ProductID:  item.ProductID,
		SKU:        item.SKU,
		Quantity:   strconv.Itoa(item.Quantity),
		MinStock:   strconv.Itoa(item.MinStock),
		Price:      item.Price.StringFixed(2),
		ExpiryDate: item.Expiry(),
		Location:   item.Location,
		Errors:     map[string]string{},
	}
	h.render(w, r, http.StatusOK, "pages/inventory/form.html", "Edit item", data)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := formFromValues(r.PostForm)
	form.ItemID = chi.URLParam(r, "id")
	form.Editing = true
	input := UpdateInput{
		Quantity: shared.FormInt(r.PostForm, "quantity", 0),
		MinStock: shared.FormInt(r.PostForm, "min_stock", 0),
		Price:    shared.FormDecimal(r.PostForm, "price"),
		Location: form.Location,
	}
	if err := h.service.Update(r.Context(), form.ItemID, input); err != nil {
		h.failForm(w, r, err, "Edit item", form)
		return
	}
	shared.AddFlash(r.Context(), shared.FlashSuccess, "Item updated")
	http.Redirect(w, r, listPath(form.Warehouse), http.StatusSeeOther)
}

func (h *Handler) showDeleteForm(w http.ResponseWriter, r *http.Request) {
	wh := warehouseParam(r.URL.Query())
	item, ok := h.lookup(w, r, wh)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "pages/inventory/delete.html", "Delete item", deletePageData{Warehouse: wh, Item: item})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	wh := warehouseParam(r.PostForm)
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("delete inventory item", slog.Any("error", err), slog.String("path", r.URL.Path))
		shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
		http.Redirect(w, r, listPath(wh), http.StatusSeeOther)
		return
	}
	shared.AddFlash(r.Context(), shared.FlashSuccess, "Item deleted")
	http.Redirect(w, r, listPath(wh), http.StatusSeeOther)
}

func (h *Handler) showTransferForm(w http.ResponseWriter, r *http.Request) {
	wh := warehouseParam(r.URL.Query())
	item, ok := h.lookup(w, r, wh)
	if !ok {
		return
	}
	data := transferPageData{
		Warehouse:  wh,
		Label:      WarehouseLabel(wh),
		Item:       item,
		Warehouses: otherWarehouses(wh),
		Errors:     map[string]string{},
	}
	h.render(w, r, http.StatusOK, "pages/inventory/transfer.html", "Transfer stock", data)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	input := TransferInput{
		Source: warehouseParam(r.PostForm),
		Target: strings.TrimSpace(r.PostFormValue("target")),
		ItemID: strings.TrimSpace(r.PostFormValue("id")),
		Qty:    shared.FormInt(r.PostForm, "qty", 0),
	}
	err := h.service.Transfer(r.Context(), input)
	if err == nil {
		shared.AddFlash(r.Context(), shared.FlashSuccess, "Stock transferred to "+WarehouseLabel(input.Target))
		http.Redirect(w, r, listPath(input.Source), http.StatusSeeOther)
		return
	}
	if auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	if errors.Is(err, ErrInvalidWarehouse) {
		http.NotFound(w, r)
		return
	}
	if !errors.Is(err, shared.ErrValidation) {
		h.logger.Error("transfer stock", slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	data := transferPageData{
		Warehouse:  input.Source,
		Label:      WarehouseLabel(input.Source),
		Item:       Item{ID: backend.ID(input.ItemID), ProductID: r.PostFormValue("product"), Quantity: shared.FormInt(r.PostForm, "available", 0)},
		Warehouses: otherWarehouses(input.Source),
		Target:     input.Target,
		Qty:        r.PostFormValue("qty"),
		Errors:     shared.FormErrors(err),
	}
	h.render(w, r, http.StatusBadRequest, "pages/inventory/transfer.html", "Transfer stock", data)
}

func (h *Handler) showArchive(w http.ResponseWriter, r *http.Request) {
	data := archivePageData{}
	page, err := h.service.Archive(r.Context(), shared.PageFromQuery(r.URL.Query()))
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("inventory archive", slog.Any("error", err), slog.String("path", r.URL.Path))
		data.Error = shared.UserSafeMessage(err)
	}
	data.Entries = page.Entries
	data.Pagination = page.Pagination
	h.render(w, r, http.StatusOK, "pages/inventory/archive.html", ArchiveLabel, data)
}

func (h *Handler) handleStockSheet(w http.ResponseWriter, r *http.Request) {
	wh := warehouseParam(r.URL.Query())
	pdf, err := h.service.StockSheet(r.Context(), wh, time.Now())
	if err != nil {
		if auth.EndSessionIfUnauthorized(w, r, err) {
			return
		}
		if errors.Is(err, ErrInvalidWarehouse) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("stock sheet", slog.Any("error", err), slog.String("warehouse", wh))
		shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
		http.Redirect(w, r, listPath(wh), http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="stock-`+wh+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// lookup resolves the {id} item for the form pages, responding on failure.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, warehouse string) (Item, bool) {
	item, err := h.service.Find(r.Context(), warehouse, chi.URLParam(r, "id"))
	if err == nil {
		return item, true
	}
	if auth.EndSessionIfUnauthorized(w, r, err) {
		return Item{}, false
	}
	switch {
	case errors.Is(err, ErrInvalidWarehouse):
		http.NotFound(w, r)
	default:
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("find inventory item", slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		shared.AddFlash(r.Context(), shared.FlashError, shared.UserSafeMessage(err))
		http.Redirect(w, r, listPath(warehouse), http.StatusSeeOther)
	}
	return Item{}, false
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, err error, title string, form itemFormData) {
	if auth.EndSessionIfUnauthorized(w, r, err) {
		return
	}
	if !errors.Is(err, shared.ErrValidation) {
		h.logger.Error("save inventory item", slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	form.Errors = shared.FormErrors(err)
	h.render(w, r, http.StatusBadRequest, "pages/inventory/form.html", title, form)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.NewPage(r, h.csrf, title, data)
	if err := h.templates.RenderStatus(w, status, name, page); err != nil {
		h.logger.Error("render inventory", slog.String("template", name), slog.Any("error", err))
	}
}

func formFromValues(values url.Values) itemFormData {
	wh := warehouseParam(values)
	return itemFormData{
		Warehouse:  wh,
		Label:      WarehouseLabel(wh),
		ProductID:  strings.TrimSpace(values.Get("product_id")),
		SKU:        strings.TrimSpace(values.Get("sku")),
		Quantity:   values.Get("quantity"),
		MinStock:   values.Get("min_stock"),
		Price:      values.Get("price"),
		ExpiryDate: strings.TrimSpace(values.Get("expiry_date")),
		Location:   strings.TrimSpace(values.Get("location")),
	}
}

func otherWarehouses(current string) []Warehouse {
	out := make([]Warehouse, 0, len(warehouses))
	for _, wh := range warehouses {
		if wh.Key != current {
			out = append(out, wh)
		}
	}
	return out
}
