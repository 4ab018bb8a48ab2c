package events

import (
	"time"

	"github.com/spec-kit/courier-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPackageCreated       EventType = "package_created"
	EventPackageStatusChanged EventType = "package_status_changed"
	EventPackageRescheduled   EventType = "package_rescheduled"
)

// Event represents a domain event emitted after a committed package write.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	PackageID    string      `json:"package_id"`
	TrackingCode string      `json:"tracking_code"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// PackageCreatedPayload payload.
type PackageCreatedPayload struct {
	ShipmentType   domain.ShipmentType `json:"shipment_type"`
	OriginBranchID string              `json:"origin_branch_id"`
	CourierID      *string             `json:"courier_id,omitempty"`
}

// PackageStatusChangedPayload payload.
type PackageStatusChangedPayload struct {
	NewStatus domain.Status `json:"new_status"`
	Note      string        `json:"note,omitempty"`
}

// PackageRescheduledPayload payload.
type PackageRescheduledPayload struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Address   string `json:"address,omitempty"`
}
