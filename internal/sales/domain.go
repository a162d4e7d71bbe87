package sales

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Order statuses accepted by the backend.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Statuses lists order statuses in workflow order.
var Statuses = []string{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}

// ValidStatus reports whether s is an order status.
func ValidStatus(s string) bool {
	for _, status := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// Order is a customer order.
type Order struct {
	ID            backend.ID      `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	OrderDate     string          `json:"orderDate"`
	DeliveryDate  string          `json:"deliveryDate"`
}

// ItemCount sums the quantities on the order.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// OrderItem is one product line on an order.
type OrderItem struct {
	ProductID   backend.ID      `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// LineTotal is quantity times price, used when the backend omits subtotal.
func (i OrderItem) LineTotal() decimal.Decimal {
	if !i.Subtotal.IsZero() {
		return i.Subtotal
	}
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ArchiveEntry is an order the backend moved to the archive on completion or
// cancellation.
type ArchiveEntry struct {
	ID            backend.ID    `json:"id"`
	OrderID       backend.ID    `json:"orderId"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Action        string        `json:"action"`
	PerformedBy   string        `json:"performedBy"`
	Timestamp     string        `json:"timestamp"`
	Items         []ArchiveItem `json:"items"`
}

// Total sums the archived line totals.
func (e ArchiveEntry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range e.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// ArchiveItem is a line of an archived order.
type ArchiveItem struct {
	ProductID  backend.ID      `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Product is a catalogue entry offered on the order form.
type Product struct {
	ID    backend.ID      `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// Filter narrows the order list.
type Filter struct {
	Search string
	Status string
}

// Summary feeds the cards above the order table.
type Summary struct {
	Revenue     decimal.Decimal
	TotalOrders int
	Pending     int
	Processing  int
}

// Board is everything the sales page shows.
type Board struct {
	Orders  []Order
	Summary Summary
}

// LineInput is one product row of the order form.
type LineInput struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"gte=1"`
}

// CreateInput is the create-order form.
type CreateInput struct {
	CustomerName  string      `validate:"required"`
	CustomerEmail string      `validate:"required,email"`
	Lines         []LineInput `validate:"min=1,dive"`
	DeliveryDate  string
}

type orderItemPayload struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

type createPayload struct {
	OrderNumber   string             `json:"orderNumber"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	Items         []orderItemPayload `json:"items"`
	TotalAmount   float64            `json:"totalAmount"`
	DeliveryDate  string             `json:"deliveryDate"`
	Status        string             `json:"status"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type revenueResponse struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}
