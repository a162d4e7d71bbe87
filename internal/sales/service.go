package sales

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// MsgCreateRequired is shown when the order form is incomplete.
const MsgCreateRequired = "Please fill in all required fields and add at least one product"

const (
	archivePerPage      = 20
	defaultDeliveryDays = 7
)

// Service holds the order rules that run before any backend call.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs the sales service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, validate: validator.New(), now: time.Now}
}

// Board loads the order list and revenue together. A failing revenue call
// falls back to the completed orders in the list.
func (s *Service) Board(ctx context.Context, filter Filter) (Board, error) {
	var (
		orders  []Order
		revenue *decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.repo.ListOrders(gctx)
		if err != nil {
			return fmt.Errorf("sales: list orders: %w", err)
		}
		orders = list
		return nil
	})
	g.Go(func() error {
		res, err := s.repo.Revenue(gctx)
		if err != nil {
			s.logger.Warn("revenue unavailable, using order list", slog.Any("error", err))
			return nil
		}
		revenue = &res.TotalRevenue
		return nil
	})
	if err := g.Wait(); err != nil {
		return Board{}, err
	}
	return Board{Orders: FilterOrders(orders, filter), Summary: Summarize(orders, revenue)}, nil
}

// FilterOrders applies the search box and status dropdown.
func FilterOrders(orders []Order, filter Filter) []Order {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	status := strings.TrimSpace(filter.Status)
	if status == "all" {
		status = ""
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), needle) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Summarize counts orders by status. Revenue comes from the backend when
// known, otherwise from completed orders in the list.
func Summarize(orders []Order, revenue *decimal.Decimal) Summary {
	sum := Summary{TotalOrders: len(orders), Revenue: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case StatusPending:
			sum.Pending++
		case StatusProcessing:
			sum.Processing++
		case StatusCompleted:
			if revenue == nil {
				sum.Revenue = sum.Revenue.Add(o.TotalAmount)
			}
		}
	}
	if revenue != nil {
		sum.Revenue = *revenue
	}
	return sum
}

// Products returns the cached catalogue.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("sales: products: %w", err)
	}
	return products, nil
}

// Create validates in, prices each line from the catalogue and submits the
// order. It returns the generated order number.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.DeliveryDate = strings.TrimSpace(in.DeliveryDate)
	if err := s.validate.Struct(in); err != nil {
		return "", shared.NewValidationError("", MsgCreateRequired)
	}
	now := s.now()
	delivery := in.DeliveryDate
	if delivery == "" {
		delivery = now.AddDate(0, 0, defaultDeliveryDays).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", delivery); err != nil {
		return "", shared.NewValidationError("delivery_date", "Delivery date must be YYYY-MM-DD")
	}

	byID, err := s.catalogue(ctx, in.Lines)
	if err != nil {
		return "", err
	}
	items := make([]orderItemPayload, 0, len(in.Lines))
	total := decimal.Zero
	for _, line := range in.Lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return "", shared.NewValidationError("", "Select products from the catalogue")
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		items = append(items, orderItemPayload{
			ProductID:   product.ID.String(),
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price.InexactFloat64(),
			Subtotal:    subtotal.Round(2).InexactFloat64(),
		})
	}

	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return "", fmt.Errorf("sales: count orders: %w", err)
	}
	number := OrderNumber(len(orders))
	payload := createPayload{
		OrderNumber:   number,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Items:         items,
		TotalAmount:   total.Round(2).InexactFloat64(),
		DeliveryDate:  delivery,
		Status:        StatusPending,
	}
	if err := s.repo.CreateOrder(ctx, payload); err != nil {
		return "", fmt.Errorf("sales: create order: %w", err)
	}
	return number, nil
}

// catalogue indexes the products by id. A line naming a product missing from
// the cached catalogue forces one refetch.
func (s *Service) catalogue(ctx context.Context, lines []LineInput) (map[string]Product, error) {
	index := func() (map[string]Product, error) {
		products, err := s.Products(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]Product, len(products))
		for _, p := range products {
			byID[p.ID.String()] = p
		}
		return byID, nil
	}
	byID, err := index()
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			s.repo.ForgetProducts()
			return index()
		}
	}
	return byID, nil
}

// OrderNumber formats the number for the order following existing orders.
func OrderNumber(existing int) string {
	return fmt.Sprintf("ORD-%03d", existing+1)
}

// UpdateStatus moves order id to status.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return shared.NewValidationError("status", "Choose a valid order status")
	}
	if strings.TrimSpace(id) == "" {
		return shared.ErrNotFound
	}
	if err := s.repo.UpdateStatus(ctx, backend.ID(id), status); err != nil {
		return fmt.Errorf("sales: update status %s: %w", id, err)
	}
	return nil
}

// Order looks id up in the current order list.
func (s *Service) Order(ctx context.Context, id string) (Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("sales: list orders: %w", err)
	}
	for _, o := range orders {
		if o.ID.String() == id {
			return o, nil
		}
	}
	return Order{}, shared.ErrNotFound
}

// ArchivePage is one page of archived orders.
type ArchivePage struct {
	Entries    []ArchiveEntry
	Pagination shared.Pagination
}

// Archive returns archived orders newest first.
func (s *Service) Archive(ctx context.Context, page int) (ArchivePage, error) {
	entries, err := s.repo.Archive(ctx)
	if err != nil {
		return ArchivePage{}, fmt.Errorf("sales: archive: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return shared.NewestFirst(entries[i].Timestamp, entries[j].Timestamp)
	})
	p := shared.NewPagination(page, archivePerPage, len(entries))
	return ArchivePage{Entries: shared.Paginate(entries, p), Pagination: p}, nil
}
