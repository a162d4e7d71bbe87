package alerts

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

const alertsJSON = `[
	{"id": 1, "cameraId": "cam-1", "type": "intrusion", "severity": "high", "title": "Gate breach",
	 "timestamp": "2024-12-14T08:00:00Z", "status": "new", "aiConfidence": 91},
	{"id": 2, "cameraId": "cam-2", "type": "safety", "severity": "medium", "title": "No helmet",
	 "timestamp": "2024-12-14T09:30:00Z", "status": "acknowledged", "aiConfidence": 84},
	{"id": 3, "cameraId": "cam-1", "type": "equipment", "severity": "low", "title": "Belt slow",
	 "timestamp": "2024-12-13T17:00:00Z", "status": "resolved", "aiConfidence": 77},
	{"id": 4, "cameraId": "cam-3", "type": "anomaly", "severity": "high", "title": "Smoke",
	 "timestamp": "not a date", "status": "new", "aiConfidence": 80}
]`

const camerasJSON = `[
	{"id": "cam-1", "name": "Loading Dock", "location": "North", "status": "active", "aiEnabled": true},
	{"id": "cam-2", "name": "Assembly", "location": "Hall 1", "status": "active", "aiEnabled": false},
	{"id": "cam-3", "name": "Parking", "location": "East", "status": "inactive", "aiEnabled": true}
]`

func newTestService(t *testing.T) (*Service, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := backend.New(backend.Options{BaseURL: apiBase, HTTPClient: &http.Client{Transport: transport}})
	return NewService(NewRepository(client), nil), transport
}

func TestBoardFiltersSortsAndCachesCameras(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/alerts", httpmock.NewStringResponder(http.StatusOK, alertsJSON))
	transport.RegisterResponder(http.MethodGet, apiBase+"/cameras", httpmock.NewStringResponder(http.StatusOK, camerasJSON))

	board, err := svc.Board(context.Background(), Filter{Camera: "all", Severity: "all", Status: "all"})
	require.NoError(t, err)
	require.Len(t, board.Alerts, 4)
	ids := []backend.ID{board.Alerts[0].ID, board.Alerts[1].ID, board.Alerts[2].ID, board.Alerts[3].ID}
	assert.Equal(t, []backend.ID{"2", "1", "3", "4"}, ids)
	assert.Equal(t, Summary{New: 2, Resolved: 1, Total: 4, ActiveCameras: 2, AIEnabled: 2}, board.Summary)
	assert.Equal(t, "Loading Dock", board.CameraName(board.Alerts[1]))

	board, err = svc.Board(context.Background(), Filter{Camera: "cam-1", Severity: "high"})
	require.NoError(t, err)
	require.Len(t, board.Alerts, 1)
	assert.Equal(t, "Gate breach", board.Alerts[0].Title)
	assert.Equal(t, 4, board.Summary.Total)

	assert.Equal(t, 1, transport.GetCallCountInfo()["GET "+apiBase+"/cameras"])
	assert.Equal(t, 2, transport.GetCallCountInfo()["GET "+apiBase+"/alerts"])
}

func TestFilterAlertsByStatus(t *testing.T) {
	var alerts []Alert
	require.NoError(t, json.Unmarshal([]byte(alertsJSON), &alerts))

	assert.Len(t, FilterAlerts(alerts, Filter{Status: StatusNew}), 2)
	assert.Len(t, FilterAlerts(alerts, Filter{Status: "ALL"}), 4)
	assert.Empty(t, FilterAlerts(alerts, Filter{Camera: "cam-9"}))
}

func TestBoardFailsWhenAlertsUnavailable(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodGet, apiBase+"/alerts", httpmock.NewStringResponder(http.StatusInternalServerError, `{}`))
	transport.RegisterResponder(http.MethodGet, apiBase+"/cameras", httpmock.NewStringResponder(http.StatusOK, camerasJSON))

	_, err := svc.Board(context.Background(), Filter{})
	require.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Equal(t, "The backend service is unavailable. Please try again.", shared.UserSafeMessage(err))
}

func TestUpdateStatus(t *testing.T) {
	svc, transport := newTestService(t)
	transport.RegisterResponder(http.MethodPut, apiBase+"/alerts/1/status",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"status":"acknowledged"}`, string(raw))
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})

	require.NoError(t, svc.UpdateStatus(context.Background(), "1", StatusAcknowledged))
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "1", StatusNew), shared.ErrValidation)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestCreate(t *testing.T) {
	svc, transport := newTestService(t)

	var posted map[string]any
	transport.RegisterResponder(http.MethodPost, apiBase+"/alerts",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			require.NoError(t, json.Unmarshal(raw, &posted))
			return httpmock.NewStringResponse(http.StatusCreated, `{"id": 5}`), nil
		})

	for _, in := range []CreateInput{
		{Type: TypeSafety, Severity: SeverityHigh},
		{Type: "fire", Severity: SeverityHigh, Title: "x"},
		{Type: TypeSafety, Severity: "urgent", Title: "x"},
	} {
		err := svc.Create(context.Background(), in)
		require.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, MsgCreateRequired, shared.UserSafeMessage(err))
	}
	assert.Zero(t, transport.GetTotalCallCount())

	require.NoError(t, svc.Create(context.Background(), CreateInput{
		Type: TypeSafety, Severity: SeverityCritical, Title: " Spill in bay 3 ", CameraID: "cam-2",
	}))
	assert.Equal(t, map[string]any{
		"type": "safety", "severity": "critical", "title": "Spill in bay 3", "description": "", "camera_id": "cam-2",
	}, posted)
}

func TestCreateWithoutCameraSendsNullCamera(t *testing.T) {
	svc, transport := newTestService(t)

	var raw []byte
	transport.RegisterResponder(http.MethodPost, apiBase+"/alerts",
		func(req *http.Request) (*http.Response, error) {
			raw, _ = io.ReadAll(req.Body)
			return httpmock.NewStringResponse(http.StatusCreated, `{"id": 6}`), nil
		})

	require.NoError(t, svc.Create(context.Background(), CreateInput{
		Type: TypeEquipment, Severity: SeverityMedium, Title: "Low stock: Flour", CameraID: "  ",
	}))

	var posted map[string]any
	require.NoError(t, json.Unmarshal(raw, &posted))
	require.Contains(t, posted, "camera_id")
	assert.Nil(t, posted["camera_id"])
	assert.JSONEq(t, `{"type":"equipment","severity":"medium","title":"Low stock: Flour","description":"","camera_id":null}`, string(raw))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 12, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "Just now"},
		{now.Add(-5 * time.Minute), "5 min ago"},
		{now.Add(-59 * time.Minute), "59 min ago"},
		{now.Add(-61 * time.Minute), "1 hour ago"},
		{now.Add(-5 * time.Hour), "5 hours ago"},
		{now.Add(-30 * time.Hour), "Dec 13, 2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeTime(now, tt.at))
	}
}
