package sales

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

const apiBase = "http://backend.test/api"

const ordersJSON = `[
	{"id": 1, "orderNumber": "ORD-001", "customerName": "John Smith", "customerEmail": "john@example.com",
	 "items": [{"productId": "1", "productName": "Product Alpha", "quantity": 10, "price": 25.99, "subtotal": 259.9}],
	 "totalAmount": 709.85, "status": "completed", "orderDate": "2024-12-10", "deliveryDate": "2024-12-15"},
	{"id": 2, "orderNumber": "ORD-002", "customerName": "Jane Doe", "customerEmail": "jane@example.com",
	 "items": [], "totalAmount": 387.5, "status": "processing", "orderDate": "2024-12-12", "deliveryDate": "2024-12-18"},
	{"id": 3, "orderNumber": "ORD-003", "customerName": "Bob Wilson", "customerEmail": "bob@example.com",
	 "items": [], "totalAmount": 538.5, "status": "pending", "orderDate": "2024-12-13", "deliveryDate": "2024-12-20"}
]`

const productsJSON = `[
	{"id": 1, "name": "Product Alpha", "sku": "PA", "price": 25.99},
	{"id": 2, "name": "Product Beta", "sku": "PB", "price": 89.99}
]`

func newTestService(t *testing.T) (*Service, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := backend.New(backend.Options{BaseURL: apiBase, HTTPClient: &http.Client{Transport: transport}})
	svc := NewService(NewRepository(client), nil)
	svc.now = func() time.Time { return time.Date(2024, 12, 14, 10, 0, 0, 0, time.UTC) }
	return svc, transport
}

func TestSummarize(t *testing.T) {
	var orders []Order
	require.NoError(t, json.Unmarshal([]byte(ordersJSON), &orders))

	sum := Summarize(orders, nil)
	assert.Equal(t, 3, sum.TotalOrders)
	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, 1, sum.Processing)
	assert.Equal(t, "709.85", sum.Revenue.String())

	backendTotal := decimal.RequireFromString("12000.40")
	sum = Summarize(orders, &backendTotal)
	assert.True(t, sum.Revenue.Equal(backendTotal))
}

func TestFilterOrders(t *testing.T) {
	var orders []Order
	require.NoError(t, json.Unmarshal([]byte(ordersJSON), &orders))

	assert.Len(t, FilterOrders(orders, Filter{Status: "all"}), 3)
	assert.Len(t, FilterOrders(orders, Filter{Search: "JANE@"}), 1)
	assert.Len(t, FilterOrders(orders, Filter{Search: "ord-00"}), 3)
	got := FilterOrders(orders, Filter{Search: "ord-00", Status: StatusPending})
	require.Len(t, got, 1)
	assert.Equal(t, "Bob Wilson", got[0].CustomerName)
}

func TestBoardFallsBackWhenRevenueFails(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/orders", httpmock.NewStringResponder(http.StatusOK, ordersJSON))
	transport.RegisterResponder(http.MethodGet, apiBase+"/revenue", httpmock.NewStringResponder(http.StatusInternalServerError, `{}`))

	board, err := svc.Board(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, board.Orders, 3)
	assert.Equal(t, "709.85", board.Summary.Revenue.String())

	transport.RegisterResponder(http.MethodGet, apiBase+"/revenue", httpmock.NewStringResponder(http.StatusOK, `{"totalRevenue": 2500.5}`))
	board, err = svc.Board(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, "2500.5", board.Summary.Revenue.String())
}

func TestBoardPropagatesOrderFailure(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/orders", httpmock.NewStringResponder(http.StatusServiceUnavailable, `{}`))
	transport.RegisterResponder(http.MethodGet, apiBase+"/revenue", httpmock.NewStringResponder(http.StatusOK, `{"totalRevenue": 1}`))

	_, err := svc.Board(context.Background(), Filter{})
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestCreateRejectsIncompleteOrdersWithoutCallingBackend(t *testing.T) {
	svc, transport := newTestService(t)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"no_items", CreateInput{CustomerName: "Ann", CustomerEmail: "ann@example.com"}},
		{"no_name", CreateInput{CustomerEmail: "ann@example.com", Lines: []LineInput{{ProductID: "1", Quantity: 1}}}},
		{"bad_email", CreateInput{CustomerName: "Ann", CustomerEmail: "ann", Lines: []LineInput{{ProductID: "1", Quantity: 1}}}},
		{"zero_quantity", CreateInput{CustomerName: "Ann", CustomerEmail: "ann@example.com", Lines: []LineInput{{ProductID: "1", Quantity: 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, MsgCreateRequired, shared.UserSafeMessage(err))
		})
	}
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestCreatePricesFromCatalogue(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/products", httpmock.NewStringResponder(http.StatusOK, productsJSON))
	transport.RegisterResponder(http.MethodGet, apiBase+"/orders", httpmock.NewStringResponder(http.StatusOK, ordersJSON))

	var posted createPayload
	transport.RegisterResponder(http.MethodPost, apiBase+"/orders",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			require.NoError(t, json.Unmarshal(raw, &posted))
			return httpmock.NewStringResponse(http.StatusCreated, `{"id": 4}`), nil
		})

	number, err := svc.Create(context.Background(), CreateInput{
		CustomerName:  " Ann Lee ",
		CustomerEmail: "ann@example.com",
		Lines:         []LineInput{{ProductID: "1", Quantity: 10}, {ProductID: "2", Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-004", number)
	assert.Equal(t, "ORD-004", posted.OrderNumber)
	assert.Equal(t, "Ann Lee", posted.CustomerName)
	assert.Equal(t, StatusPending, posted.Status)
	assert.Equal(t, "2024-12-21", posted.DeliveryDate)
	assert.InDelta(t, 709.85, posted.TotalAmount, 0.0001)
	require.Len(t, posted.Items, 2)
	assert.Equal(t, "Product Beta", posted.Items[1].ProductName)
	assert.InDelta(t, 449.95, posted.Items[1].Subtotal, 0.0001)

	// The catalogue is served from cache on the next order.
	_, err = svc.Create(context.Background(), CreateInput{
		CustomerName: "Ann", CustomerEmail: "ann@example.com", DeliveryDate: "2025-01-05",
		Lines: []LineInput{{ProductID: "1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", posted.DeliveryDate)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET "+apiBase+"/products"])
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/products", httpmock.NewStringResponder(http.StatusOK, productsJSON))

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerName: "Ann", CustomerEmail: "ann@example.com",
		Lines: []LineInput{{ProductID: "99", Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Zero(t, transport.GetCallCountInfo()["POST "+apiBase+"/orders"])
	assert.Equal(t, 2, transport.GetCallCountInfo()["GET "+apiBase+"/products"], "a miss refetches the catalogue once")
}

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-001", OrderNumber(0))
	assert.Equal(t, "ORD-042", OrderNumber(41))
	assert.Equal(t, "ORD-1000", OrderNumber(999))
}

func TestUpdateStatus(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodPut, apiBase+"/orders/2/status",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"status":"completed"}`, string(raw))
			return httpmock.NewStringResponse(http.StatusOK, `{"message":"Order moved to archive as completed"}`), nil
		})

	require.NoError(t, svc.UpdateStatus(context.Background(), "2", StatusCompleted))
	err := svc.UpdateStatus(context.Background(), "2", "shipped")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestOrderLookup(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/orders", httpmock.NewStringResponder(http.StatusOK, ordersJSON))

	order, err := svc.Order(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 10, order.ItemCount())
	assert.Equal(t, "259.9", order.Items[0].LineTotal().String())

	_, err = svc.Order(context.Background(), "77")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestArchiveNewestFirst(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/orders/archive", httpmock.NewStringResponder(http.StatusOK, `[
		{"id": 1, "orderId": 10, "action": "completed", "timestamp": "2024-12-01T10:00:00", "items": [{"productId": 1, "quantity": 2, "unitPrice": 5, "totalPrice": 10}]},
		{"id": 2, "orderId": 11, "action": "cancelled", "timestamp": "2024-12-03T10:00:00", "items": []}
	]`))

	page, err := svc.Archive(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, backend.ID("2"), page.Entries[0].ID)
	assert.Equal(t, "10", page.Entries[1].Total().String())
}
