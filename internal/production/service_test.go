package production

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

const apiBase = "http://backend.test/api"

const productsJSON = `[
	{"id": 1, "name": "Chocolate Cake", "sku": "CAKE-CHOC", "productionTime": 90, "unitsPerRun": 12,
	 "recipe": [
		{"ingredientId": 1, "ingredientName": "Flour", "quantity": 2.5, "unit": "kg"},
		{"ingredientId": 2, "ingredientName": "Sugar", "quantity": 1.25, "unit": "kg"}
	 ]},
	{"id": 2, "name": "Bread", "sku": "BREAD", "productionTime": 60, "unitsPerRun": 0, "recipe": []}
]`

const linesJSON = `[
	{"id": 1, "name": "Line A", "productId": 1, "status": "operational", "capacityPerHour": 40, "location": "Hall 1"},
	{"id": 2, "name": "Line B", "productId": 2, "status": "maintenance", "capacityPerHour": 25, "location": "Hall 2"}
]`

const runsJSON = `[
	{"id": 10, "productId": 1, "productName": "Chocolate Cake", "runNumber": "RUN-1", "productionLineId": 1,
	 "quantity": 24, "status": "in-progress", "machineStopped": false, "startDate": "2024-12-10", "assignedTo": "Maria"},
	{"id": 11, "productId": 2, "productName": "Bread", "runNumber": "RUN-2", "productionLineId": 2,
	 "quantity": 50, "status": "planned", "machineStopped": true, "stopReason": "jam", "startDate": "2024-12-11", "assignedTo": "Tom"}
]`

const archivedJSON = `[
	{"id": 7, "productId": 1, "productName": "Chocolate Cake", "runNumber": "RUN-0", "quantity": 36, "status": "completed"},
	{"id": 8, "productId": 2, "productName": "Bread", "runNumber": "RUN-00", "quantity": 14, "status": "completed"}
]`

func newTestService(t *testing.T) (*Service, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := backend.New(backend.Options{BaseURL: apiBase, HTTPClient: &http.Client{Transport: transport}})
	svc := NewService(NewRepository(client))
	svc.now = func() time.Time { return time.Date(2024, 12, 14, 10, 0, 0, 0, time.UTC) }
	return svc, transport
}

func registerBoard(transport *httpmock.MockTransport) {
	transport.RegisterResponder(http.MethodGet, apiBase+"/production/products", httpmock.NewStringResponder(http.StatusOK, productsJSON))
	transport.RegisterResponder(http.MethodGet, apiBase+"/production/lines", httpmock.NewStringResponder(http.StatusOK, linesJSON))
	transport.RegisterResponder(http.MethodGet, apiBase+"/production/runs", httpmock.NewStringResponder(http.StatusOK, runsJSON))
	transport.RegisterResponder(http.MethodGet, apiBase+"/production/archived", httpmock.NewStringResponder(http.StatusOK, archivedJSON))
}

func TestBoardSummaryUsesActiveAndArchivedRuns(t *testing.T) {
	svc, transport := newTestService(t)
	registerBoard(transport)

	board, err := svc.Board(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, ViewActive, board.View)
	assert.Len(t, board.Runs, 2)
	assert.Equal(t, Summary{Completed: 2, InProgress: 1, StoppedMachine: 1, TotalProduced: 50}, board.Summary)
	assert.Equal(t, "Line B", board.LineName("2"))
	assert.Equal(t, "Chocolate Cake", board.ProductName("1"))

	board, err = svc.Board(context.Background(), ViewArchived, "bread")
	require.NoError(t, err)
	require.Len(t, board.Runs, 1)
	assert.Equal(t, "RUN-00", board.Runs[0].RunNumber)
	assert.Equal(t, 2, board.Summary.Completed)
}

func TestBoardFailsWhenAnyFetchFails(t *testing.T) {
	svc, transport := newTestService(t)
	registerBoard(transport)
	transport.RegisterResponder(http.MethodGet, apiBase+"/production/lines", httpmock.NewStringResponder(http.StatusBadGateway, `{}`))

	_, err := svc.Board(context.Background(), ViewActive, "")
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestFilterRuns(t *testing.T) {
	var runs []Run
	require.NoError(t, json.Unmarshal([]byte(runsJSON), &runs))

	assert.Len(t, FilterRuns(runs, "  "), 2)
	assert.Len(t, FilterRuns(runs, "maria"), 1)
	assert.Len(t, FilterRuns(runs, "run-"), 2)
	assert.Empty(t, FilterRuns(runs, "croissant"))
}

func TestRequirementsScaleWithRuns(t *testing.T) {
	var products []Product
	require.NoError(t, json.Unmarshal([]byte(productsJSON), &products))

	reqs := Requirements(products[0], 3)
	require.Len(t, reqs, 2)
	assert.Equal(t, "Flour", reqs[0].IngredientName)
	assert.Equal(t, "2.5", reqs[0].PerRun.String())
	assert.Equal(t, "7.5", reqs[0].Total.String())
	assert.Equal(t, "3.75", reqs[1].Total.String())

	assert.Equal(t, "2.5", Requirements(products[0], 0)[0].Total.String())
}

func TestCreateRunValidationSkipsBackend(t *testing.T) {
	svc, transport := newTestService(t)

	tests := []struct {
		name  string
		input RunInput
		msg   string
	}{
		{"no_product", RunInput{Runs: 2}, MsgRunRequired},
		{"zero_runs", RunInput{ProductID: "1"}, MsgRunRequired},
		{"bad_date", RunInput{ProductID: "1", Runs: 1, StartDate: "14/12/2024"}, "Start date must be YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRun(context.Background(), tt.input)
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, tt.msg, shared.UserSafeMessage(err))
		})
	}
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestCreateRunQuantityIsRunsTimesUnits(t *testing.T) {
	svc, transport := newTestService(t)
	registerBoard(transport)

	var posted createRunPayload
	transport.RegisterResponder(http.MethodPost, apiBase+"/production/runs",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			require.NoError(t, json.Unmarshal(raw, &posted))
			return httpmock.NewStringResponse(http.StatusCreated, `{"id": 12}`), nil
		})

	number, err := svc.CreateRun(context.Background(), RunInput{ProductID: "1", LineID: "1", Runs: 3, AssignedTo: " Maria "})
	require.NoError(t, err)
	assert.Equal(t, RunNumber(svc.now()), number)
	assert.Equal(t, number, posted.RunNumber)
	assert.Equal(t, 36, posted.Quantity)
	assert.Equal(t, RunPlanned, posted.Status)
	assert.Equal(t, "2024-12-14", posted.StartDate)
	assert.Equal(t, "Maria", posted.AssignedTo)
	assert.False(t, posted.MachineStopped)

	// Products without a unit count produce one unit per run.
	_, err = svc.CreateRun(context.Background(), RunInput{ProductID: "2", Runs: 4, StartDate: "2025-01-02"})
	require.NoError(t, err)
	assert.Equal(t, 4, posted.Quantity)
	assert.Equal(t, "2025-01-02", posted.StartDate)
}

func TestCreateRunRejectsUnknownProduct(t *testing.T) {
	svc, transport := newTestService(t)
	registerBoard(transport)

	_, err := svc.CreateRun(context.Background(), RunInput{ProductID: "99", Runs: 1})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, map[string]string{"product_id": "Select a product from the list"}, shared.FormErrors(err))
	assert.Zero(t, transport.GetCallCountInfo()["POST "+apiBase+"/production/runs"])
}

func TestSetMachineStatusPayload(t *testing.T) {
	svc, transport := newTestService(t)

	var bodies []string
	transport.RegisterResponder(http.MethodPost, apiBase+"/production/runs/10/machine-status",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			bodies = append(bodies, string(raw))
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})

	require.NoError(t, svc.SetMachineStatus(context.Background(), "10", true, " belt jam "))
	require.NoError(t, svc.SetMachineStatus(context.Background(), "10", true, ""))
	require.NoError(t, svc.SetMachineStatus(context.Background(), "10", false, "ignored"))
	require.Len(t, bodies, 3)
	assert.JSONEq(t, `{"machine_stopped": true, "reason": "belt jam"}`, bodies[0])
	assert.JSONEq(t, `{"machine_stopped": true}`, bodies[1])
	assert.JSONEq(t, `{"machine_stopped": false}`, bodies[2])
}

func TestStatusUpdates(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodPut, apiBase+"/production/runs/RUN-1",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"status":"completed"}`, string(raw))
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})
	transport.RegisterResponder(http.MethodPut, apiBase+"/production/lines/2",
		httpmock.NewStringResponder(http.StatusOK, `{}`))

	require.NoError(t, svc.UpdateRunStatus(context.Background(), "RUN-1", RunCompleted))
	require.NoError(t, svc.UpdateLineStatus(context.Background(), "2", LineOperational))
	assert.ErrorIs(t, svc.UpdateRunStatus(context.Background(), "RUN-1", "paused"), shared.ErrValidation)
	assert.ErrorIs(t, svc.UpdateLineStatus(context.Background(), "2", "broken"), shared.ErrValidation)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestRunLookup(t *testing.T) {
	svc, transport := newTestService(t)
	registerBoard(transport)

	run, err := svc.Run(context.Background(), "11")
	require.NoError(t, err)
	assert.Equal(t, "jam", run.StopReason)

	_, err = svc.Run(context.Background(), "404")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
