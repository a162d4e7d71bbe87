package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// Validation messages shown on the inventory forms.
const (
	MsgAddRequired      = "Product ID and Quantity are required"
	MsgTransferRequired = "Select target warehouse and a valid quantity"
	MsgTransferExceeds  = "Transfer quantity exceeds available stock"
	MsgTransferSame     = "Target warehouse must differ from the source warehouse"
)

const archivePerPage = 20

// Service holds the inventory rules that run before any backend call.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs the inventory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List fetches a warehouse and applies the search filter.
func (s *Service) List(ctx context.Context, warehouse, search string) ([]Item, error) {
	stock, err := s.Stock(ctx, warehouse, search)
	if err != nil {
		return nil, err
	}
	return stock.Items, nil
}

// Stock fetches a warehouse for the stock page. The summary covers the whole
// warehouse; only the rows are narrowed by search.
func (s *Service) Stock(ctx context.Context, warehouse, search string) (Stock, error) {
	if !ValidWarehouse(warehouse) {
		return Stock{}, ErrInvalidWarehouse
	}
	items, err := s.repo.List(ctx, warehouse)
	if err != nil {
		return Stock{}, fmt.Errorf("inventory: list %s: %w", warehouse, err)
	}
	return Stock{Items: FilterItems(items, search), Summary: Summarize(items)}, nil
}

// FilterItems keeps items whose product or SKU contains search, ignoring case.
func FilterItems(items []Item, search string) []Item {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ProductID), needle) ||
			strings.Contains(strings.ToLower(item.SKU), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Summarize computes the stock cards for items.
func Summarize(items []Item) Summary {
	sum := Summary{Products: len(items), TotalValue: decimal.Zero}
	for _, item := range items {
		if item.LowStock() {
			sum.LowStock++
		}
		sum.TotalQuantity += item.Quantity
		sum.TotalValue = sum.TotalValue.Add(item.Value())
	}
	return sum
}

// Add validates in and creates the item in warehouse.
func (s *Service) Add(ctx context.Context, warehouse string, in AddInput) error {
	if !ValidWarehouse(warehouse) {
		return ErrInvalidWarehouse
	}
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.SKU = strings.TrimSpace(in.SKU)
	in.ExpiryDate = strings.TrimSpace(in.ExpiryDate)
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) == 1 && fieldErrs[0].Field() == "MinStock" {
			return shared.NewValidationError("min_stock", "Min stock must be zero or more")
		}
		return shared.NewValidationError("", MsgAddRequired)
	}
	if in.Price.IsNegative() {
		return shared.NewValidationError("price", "Price must be zero or more")
	}
	if in.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", in.ExpiryDate); err != nil {
			return shared.NewValidationError("expiry_date", "Expiry date must be YYYY-MM-DD")
		}
	}
	payload := createPayload{
		ProductID:  in.ProductID,
		SKU:        in.SKU,
		Quantity:   in.Quantity,
		MinStock:   in.MinStock,
		Price:      in.Price.InexactFloat64(),
		ExpiryDate: in.ExpiryDate,
		Location:   strings.TrimSpace(in.Location),
	}
	if err := s.repo.Create(ctx, warehouse, payload); err != nil {
		return fmt.Errorf("inventory: add: %w", err)
	}
	return nil
}

// Update validates in and saves it over item id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	if strings.TrimSpace(id) == "" {
		return shared.ErrNotFound
	}
	if err := s.validate.Struct(in); err != nil || in.Price.IsNegative() {
		return shared.NewValidationError("", "Quantity, min stock and price must be zero or more")
	}
	payload := updatePayload{
		Quantity: in.Quantity,
		MinStock: in.MinStock,
		Price:    in.Price.InexactFloat64(),
		Location: strings.TrimSpace(in.Location),
	}
	if err := s.repo.Update(ctx, backend.ID(id), payload); err != nil {
		return fmt.Errorf("inventory: update %s: %w", id, err)
	}
	return nil
}

// Delete removes item id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return shared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, backend.ID(id)); err != nil {
		return fmt.Errorf("inventory: delete %s: %w", id, err)
	}
	return nil
}

// Find returns one item of warehouse by id from a fresh listing.
func (s *Service) Find(ctx context.Context, warehouse, id string) (Item, error) {
	if !ValidWarehouse(warehouse) {
		return Item{}, ErrInvalidWarehouse
	}
	items, err := s.repo.List(ctx, warehouse)
	if err != nil {
		return Item{}, fmt.Errorf("inventory: list %s: %w", warehouse, err)
	}
	for _, item := range items {
		if item.ID.String() == id {
			return item, nil
		}
	}
	return Item{}, shared.ErrNotFound
}

// Transfer checks stock against a fresh listing of the source warehouse and
// asks the backend to move the quantity.
func (s *Service) Transfer(ctx context.Context, in TransferInput) error {
	if !ValidWarehouse(in.Source) {
		return ErrInvalidWarehouse
	}
	if in.Target == "" || in.Qty <= 0 {
		return shared.NewValidationError("", MsgTransferRequired)
	}
	if !ValidWarehouse(in.Target) {
		return shared.NewValidationError("target", MsgTransferRequired)
	}
	if in.Target == in.Source {
		return shared.NewValidationError("target", MsgTransferSame)
	}
	item, err := s.Find(ctx, in.Source, in.ItemID)
	if err != nil {
		return err
	}
	if in.Qty > item.Quantity {
		return shared.NewValidationError("qty", MsgTransferExceeds)
	}
	payload := transferPayload{
		SourceWarehouse: in.Source,
		TargetWarehouse: in.Target,
		ID:              item.ID.String(),
		Qty:             in.Qty,
	}
	if err := s.repo.Transfer(ctx, payload); err != nil {
		return fmt.Errorf("inventory: transfer: %w", err)
	}
	return nil
}

// ArchivePage is one page of the edit archive.
type ArchivePage struct {
	Entries    []ArchiveEntry
	Pagination shared.Pagination
}

// Archive returns the edit history newest first, paginated locally.
func (s *Service) Archive(ctx context.Context, page int) (ArchivePage, error) {
	entries, err := s.repo.Archive(ctx)
	if err != nil {
		return ArchivePage{}, fmt.Errorf("inventory: archive: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return shared.NewestFirst(entries[i].Timestamp, entries[j].Timestamp)
	})
	p := shared.NewPagination(page, archivePerPage, len(entries))
	return ArchivePage{Entries: shared.Paginate(entries, p), Pagination: p}, nil
}

// LowStock returns every item below its minimum across all warehouses, keyed
// by warehouse.
func (s *Service) LowStock(ctx context.Context) (map[string][]Item, error) {
	out := make(map[string][]Item)
	for _, wh := range warehouses {
		items, err := s.repo.List(ctx, wh.Key)
		if err != nil {
			return nil, fmt.Errorf("inventory: list %s: %w", wh.Key, err)
		}
		for _, item := range items {
			if item.LowStock() {
				out[wh.Key] = append(out[wh.Key], item)
			}
		}
	}
	return out, nil
}
