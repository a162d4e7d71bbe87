// Package alerts lists camera and equipment alerts and lets admins triage them.
package alerts

import (
	"time"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// Alert types.
const (
	TypeAnomaly       = "anomaly"
	TypeIntrusion     = "intrusion"
	TypeSafety        = "safety"
	TypeEquipment     = "equipment"
	TypeFaceDetection = "face_detection"
)

// Severities, lowest first.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert statuses.
const (
	StatusNew          = "new"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
)

// CameraActive marks a live camera feed.
const CameraActive = "active"

// FilterAll disables a filter.
const FilterAll = "all"

var (
	// Types lists alert types for filters and the create form.
	Types = []string{TypeAnomaly, TypeIntrusion, TypeSafety, TypeEquipment, TypeFaceDetection}
	// Severities lists severities for filters and the create form.
	Severities = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	// Statuses lists alert statuses in triage order.
	Statuses = []string{StatusNew, StatusAcknowledged, StatusResolved}
)

// Alert is one detection raised by a camera or a job.
type Alert struct {
	ID           backend.ID `json:"id"`
	CameraID     backend.ID `json:"cameraId"`
	CameraName   string     `json:"cameraName"`
	Type         string     `json:"type"`
	Severity     string     `json:"severity"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Timestamp    string     `json:"timestamp"`
	Status       string     `json:"status"`
	AIConfidence float64    `json:"aiConfidence"`
}

// Time parses the alert timestamp.
func (a Alert) Time() (time.Time, bool) {
	return shared.ParseTimestamp(a.Timestamp)
}

// Camera is a monitored feed.
type Camera struct {
	ID        backend.ID `json:"id"`
	Name      string     `json:"name"`
	Location  string     `json:"location"`
	Status    string     `json:"status"`
	AIEnabled bool       `json:"aiEnabled"`
	Thumbnail string     `json:"thumbnail"`
}

// Filter narrows the alert list. Empty fields mean all.
type Filter struct {
	Camera   string
	Severity string
	Status   string
}

// Summary feeds the cards above the alert list.
type Summary struct {
	New           int
	Resolved      int
	Total         int
	ActiveCameras int
	AIEnabled     int
}

// Board is everything the alerts page shows.
type Board struct {
	Alerts  []Alert
	Cameras []Camera
	Summary Summary
}

// CameraName resolves a camera id, falling back to the name on the alert.
func (b Board) CameraName(a Alert) string {
	for _, c := range b.Cameras {
		if c.ID == a.CameraID {
			return c.Name
		}
	}
	return a.CameraName
}

// CreateInput is the manual alert form.
type CreateInput struct {
	Type        string `validate:"required,oneof=anomaly intrusion safety equipment face_detection"`
	Severity    string `validate:"required,oneof=low medium high critical"`
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	CameraID    string
}

// CreatePayload is the body of POST /alerts. The backend requires camera_id,
// so alerts without a camera send it as null.
type CreatePayload struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CameraID    *string `json:"camera_id"`
}

type statusPayload struct {
	Status string `json:"status"`
}
