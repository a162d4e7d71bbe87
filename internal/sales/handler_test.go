package sales_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jarcoal/httpmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/rbac"
	"github.com/odyssey-erp/companyhub/internal/sales"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
	_ "github.com/odyssey-erp/companyhub/testing"
)

const apiBase = "http://backend.test/api"

const catalogueJSON = `[
	{"id": 1, "name": "Product Alpha", "sku": "PA", "price": 25.99},
	{"id": 2, "name": "Product Beta", "sku": "PB", "price": 89.99}
]`

const openOrdersJSON = `[
	{"id": 1, "orderNumber": "ORD-001", "customerName": "John Smith", "customerEmail": "john@example.com",
	 "items": [], "totalAmount": 709.85, "status": "processing", "orderDate": "2024-12-10", "deliveryDate": "2024-12-15"}
]`

type harness struct {
	router    http.Handler
	sessions  *shared.SessionManager
	transport *httpmock.MockTransport
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, apiBase+"/products", httpmock.NewStringResponder(http.StatusOK, catalogueJSON))
	transport.RegisterResponder(http.MethodGet, apiBase+"/orders", httpmock.NewStringResponder(http.StatusOK, openOrdersJSON))
	client := backend.New(backend.Options{BaseURL: apiBase, HTTPClient: &http.Client{Transport: transport}})
	templates, err := view.NewEngine()
	require.NoError(t, err)

	h := sales.NewHandler(nil, sales.NewService(sales.NewRepository(client), nil), templates,
		shared.NewCSRFManager("csrf-secret"), rbac.Middleware{})
	r := chi.NewRouter()
	r.Route("/sales", h.MountRoutes)
	return &harness{
		router:    r,
		sessions:  shared.NewSessionManager(redisClient, "test_session", "session-secret", time.Hour, false),
		transport: transport,
	}
}

func (h *harness) do(t *testing.T, role string, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := h.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SignIn("token", shared.SessionUser{ID: "2", Username: "sales", Role: role})
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr, sess
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateWithoutItemsIsRejected(t *testing.T) {
	h := newHarness(t)

	rr, _ := h.do(t, shared.RoleSalesStaff, postForm("/sales", url.Values{
		"customer_name":  {"Jane Doe"},
		"customer_email": {"jane@example.com"},
		"product_id":     {""},
		"quantity":       {"1"},
	}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), sales.MsgCreateRequired)
	assert.Zero(t, h.transport.GetCallCountInfo()["POST "+apiBase+"/orders"])
}

func TestCreatePricesFromCatalogue(t *testing.T) {
	h := newHarness(t)
	var posted map[string]any
	h.transport.RegisterResponder(http.MethodPost, apiBase+"/orders",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			require.NoError(t, json.Unmarshal(raw, &posted))
			return httpmock.NewStringResponse(http.StatusCreated, `{}`), nil
		})

	rr, sess := h.do(t, shared.RoleSalesStaff, postForm("/sales", url.Values{
		"customer_name":  {"Jane Doe"},
		"customer_email": {"jane@example.com"},
		"delivery_date":  {"2025-01-10"},
		"product_id":     {"1", "2", ""},
		"quantity":       {"2", "1", "1"},
	}))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/sales", rr.Header().Get("Location"))
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Order ORD-002 created", flash.Message)
	require.NotNil(t, posted)
	assert.Equal(t, "ORD-002", posted["orderNumber"])
	assert.InDelta(t, 141.97, posted["totalAmount"], 0.001)
	assert.Len(t, posted["items"], 2)
}

func TestStatusChangeRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)

	rr, sess := h.do(t, shared.RoleSalesStaff, postForm("/sales/1/status", url.Values{"status": {"shipped"}}))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, shared.FlashError, flash.Kind)
	assert.Zero(t, h.transport.GetCallCountInfo()["PUT "+apiBase+"/orders/1/status"])
}

func TestIndexRendersOrders(t *testing.T) {
	h := newHarness(t)
	h.transport.RegisterResponder(http.MethodGet, apiBase+"/revenue",
		httpmock.NewStringResponder(http.StatusOK, `{"totalRevenue": 1500}`))

	rr, _ := h.do(t, shared.RoleAdmin, httptest.NewRequest(http.MethodGet, "/sales?status=processing", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ORD-001")
	assert.Contains(t, rr.Body.String(), "John Smith")
}

func TestArchiveIsAdminOnly(t *testing.T) {
	h := newHarness(t)

	rr, _ := h.do(t, shared.RoleSalesStaff, httptest.NewRequest(http.MethodGet, "/sales/archive", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/sales", rr.Header().Get("Location"))
}
