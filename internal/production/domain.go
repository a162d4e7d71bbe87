// Package production drives the production board: runs, lines and recipes.
package production

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/companyhub/internal/backend"
)

// Run statuses.
const (
	RunPlanned    = "planned"
	RunInProgress = "in-progress"
	RunCompleted  = "completed"
	RunStopped    = "stopped"
)

// Line statuses.
const (
	LineOperational = "operational"
	LineStopped     = "stopped"
	LineMaintenance = "maintenance"
)

// Board views.
const (
	ViewActive   = "active"
	ViewArchived = "archived"
)

// RunStatuses lists run statuses in workflow order.
var RunStatuses = []string{RunPlanned, RunInProgress, RunCompleted, RunStopped}

// LineStatuses lists line statuses.
var LineStatuses = []string{LineOperational, LineStopped, LineMaintenance}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// RecipeItem is one ingredient needed per run.
type RecipeItem struct {
	IngredientID   backend.ID      `json:"ingredientId"`
	IngredientName string          `json:"ingredientName"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
}

// Product is something the plant makes, with its recipe.
type Product struct {
	ID             backend.ID   `json:"id"`
	Name           string       `json:"name"`
	SKU            string       `json:"sku"`
	Recipe         []RecipeItem `json:"recipe"`
	ProductionTime int          `json:"productionTime"`
	UnitsPerRun    int          `json:"unitsPerRun"`
}

// Line is a production line dedicated to one product.
type Line struct {
	ID              backend.ID `json:"id"`
	Name            string     `json:"name"`
	ProductID       backend.ID `json:"productId"`
	Status          string     `json:"status"`
	CapacityPerHour int        `json:"capacityPerHour"`
	Location        string     `json:"location"`
	LastMaintenance string     `json:"lastMaintenance"`
	NextMaintenance string     `json:"nextMaintenance"`
}

// Run is one scheduled batch of a product on a line.
type Run struct {
	ID               backend.ID `json:"id"`
	ProductID        backend.ID `json:"productId"`
	ProductName      string     `json:"productName"`
	RunNumber        string     `json:"runNumber"`
	ProductionLineID backend.ID `json:"productionLineId"`
	Quantity         int        `json:"quantity"`
	Status           string     `json:"status"`
	MachineStopped   bool       `json:"machineStopped"`
	StopReason       string     `json:"stopReason"`
	StartDate        string     `json:"startDate"`
	CompletionDate   string     `json:"completionDate"`
	AssignedTo       string     `json:"assignedTo"`
	CreatedBy        string     `json:"createdBy"`
}

// Requirement is an ingredient total for a number of runs.
type Requirement struct {
	IngredientName string
	PerRun         decimal.Decimal
	Total          decimal.Decimal
	Unit           string
}

// Summary feeds the cards above the run table.
type Summary struct {
	Completed      int
	InProgress     int
	StoppedMachine int
	TotalProduced  int
}

// Board is everything the production page shows.
type Board struct {
	View     string
	Products []Product
	Lines    []Line
	Runs     []Run
	Summary  Summary
}

// LineName resolves a line id for display.
func (b Board) LineName(id backend.ID) string {
	for _, l := range b.Lines {
		if l.ID == id {
			return l.Name
		}
	}
	return ""
}

// ProductName resolves a product id for display.
func (b Board) ProductName(id backend.ID) string {
	for _, p := range b.Products {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// RunInput is the create-run form.
type RunInput struct {
	ProductID  string `validate:"required"`
	LineID     string
	Runs       int `validate:"gte=1"`
	StartDate  string
	AssignedTo string
}

type createRunPayload struct {
	ProductID        string `json:"product_id"`
	RunNumber        string `json:"run_number"`
	ProductionLineID string `json:"production_line_id"`
	Quantity         int    `json:"quantity"`
	Status           string `json:"status"`
	MachineStopped   bool   `json:"machine_stopped"`
	StartDate        string `json:"start_date"`
	AssignedTo       string `json:"assigned_to"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type machinePayload struct {
	MachineStopped bool   `json:"machine_stopped"`
	Reason         string `json:"reason,omitempty"`
}
