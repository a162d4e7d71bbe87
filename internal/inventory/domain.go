package inventory

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Warehouses served by the backend.
const (
	WarehouseRawMaterials  = "raw_materials"
	WarehouseWholesale     = "wholesale"
	WarehouseDetailedSales = "detailed_sales"
)

// ErrInvalidWarehouse is returned for warehouse keys the backend does not know.
var ErrInvalidWarehouse = errors.New("inventory: invalid warehouse")

// Warehouse pairs a warehouse key with its display label.
type Warehouse struct {
	Key   string
	Label string
}

var warehouses = []Warehouse{
	{Key: WarehouseRawMaterials, Label: "Raw Materials Warehouse"},
	{Key: WarehouseWholesale, Label: "Wholesale Warehouse"},
	{Key: WarehouseDetailedSales, Label: "Detailed Sales Warehouse"},
}

// ArchiveLabel titles the edit archive tab.
const ArchiveLabel = "Archive"

// Warehouses lists the warehouses in display order.
func Warehouses() []Warehouse {
	out := make([]Warehouse, len(warehouses))
	copy(out, warehouses)
	return out
}

// WarehouseLabel returns the display label for key, or key itself when unknown.
func WarehouseLabel(key string) string {
	for _, wh := range warehouses {
		if wh.Key == key {
			return wh.Label
		}
	}
	return key
}

// ValidWarehouse reports whether key names a known warehouse.
func ValidWarehouse(key string) bool {
	for _, wh := range warehouses {
		if wh.Key == key {
			return true
		}
	}
	return false
}

// Item is one stock line in a warehouse. ProductID carries the product's name.
type Item struct {
	ID         backend.ID      `json:"id"`
	ProductID  string          `json:"product_id"`
	SKU        string          `json:"sku"`
	Quantity   int             `json:"quantity"`
	MinStock   int             `json:"min_stock"`
	Price      decimal.Decimal `json:"price"`
	Location   string          `json:"location"`
	ExpiryDate *string         `json:"expiry_date"`
}

// LowStock reports whether the item is below its minimum.
func (i Item) LowStock() bool {
	return i.Quantity < i.MinStock
}

// Value is quantity times unit price.
func (i Item) Value() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Expiry returns the expiry date or an empty string.
func (i Item) Expiry() string {
	if i.ExpiryDate == nil {
		return ""
	}
	return *i.ExpiryDate
}

// ArchiveEntry records one field edit made to an item.
type ArchiveEntry struct {
	ID        backend.ID `json:"id"`
	ItemID    backend.ID `json:"item_id"`
	SKU       string     `json:"sku"`
	Field     string     `json:"field"`
	OldValue  any        `json:"old_value"`
	NewValue  any        `json:"new_value"`
	EditedBy  string     `json:"edited_by"`
	Timestamp string     `json:"timestamp"`
}

// Summary aggregates the cards above the stock table.
type Summary struct {
	Products      int
	LowStock      int
	TotalQuantity int
	TotalValue    decimal.Decimal
}

// Stock is one warehouse as the stock page shows it.
type Stock struct {
	Items   []Item
	Summary Summary
}

// AddInput is the add-item form.
type AddInput struct {
	ProductID  string `validate:"required"`
	SKU        string
	Quantity   int `validate:"gt=0"`
	MinStock   int `validate:"gte=0"`
	Price      decimal.Decimal
	ExpiryDate string
	Location   string
}

// UpdateInput is the edit-item form.
type UpdateInput struct {
	Quantity int `validate:"gte=0"`
	MinStock int `validate:"gte=0"`
	Price    decimal.Decimal
	Location string
}

// TransferInput moves qty of an item from one warehouse to another.
type TransferInput struct {
	Source string
	Target string
	ItemID string
	Qty    int
}

type createPayload struct {
	ProductID  string  `json:"product_id"`
	SKU        string  `json:"sku"`
	Quantity   int     `json:"quantity"`
	MinStock   int     `json:"min_stock"`
	Price      float64 `json:"price"`
	ExpiryDate string  `json:"expiry_date"`
	Location   string  `json:"location"`
}

type updatePayload struct {
	Quantity int     `json:"quantity"`
	MinStock int     `json:"min_stock"`
	Price    float64 `json:"price"`
	Location string  `json:"location"`
}

type transferPayload struct {
	SourceWarehouse string `json:"sourceWarehouse"`
	TargetWarehouse string `json:"targetWarehouse"`
	ID              string `json:"id"`
	Qty             int    `json:"qty"`
}
