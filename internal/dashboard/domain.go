// Package dashboard builds the admin overview: headline metrics, monthly
// charts and the recent activity feed.
package dashboard

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Section names double as backend paths under /dashboard and cache key parts.
const (
	SectionMetrics      = "metrics"
	SectionSales        = "sales-performance"
	SectionProduction   = "production-performance"
	SectionDistribution = "inventory-distribution"
	SectionActivities   = "recent-activities"
)

// Sections lists every overview section in page order.
var Sections = []string{SectionMetrics, SectionSales, SectionProduction, SectionDistribution, SectionActivities}

// Metrics are the headline cards.
type Metrics struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalOrders      int             `json:"totalOrders"`
	ProductionOutput int             `json:"productionOutput"`
	InventoryItems   int             `json:"inventoryItems"`
}

// SalesPoint is one month of sales.
type SalesPoint struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
}

// ProductionPoint is one month of output against target.
type ProductionPoint struct {
	Month    string  `json:"month"`
	Produced float64 `json:"produced"`
	Target   float64 `json:"target"`
}

// DistributionSlice is the stock share of one warehouse or category.
type DistributionSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID      backend.ID `json:"id"`
	Type    string     `json:"type"`
	Message string     `json:"message"`
	Time    string     `json:"time"`
}

// Charts holds the rendered SVG for each chart. A chart is empty when its
// section has no data.
type Charts struct {
	Sales        template.HTML
	Orders       template.HTML
	Production   template.HTML
	Distribution template.HTML
}

// Overview is everything the dashboard shows. Errors maps a failed section to
// the message rendered in its place.
type Overview struct {
	Metrics      Metrics
	Sales        []SalesPoint
	Production   []ProductionPoint
	Distribution []DistributionSlice
	Activities   []Activity
	Errors       map[string]string
	Charts       Charts
	GeneratedAt  time.Time
}

// Failed reports whether section could not be loaded.
func (o Overview) Failed(section string) bool {
	_, ok := o.Errors[section]
	return ok
}
