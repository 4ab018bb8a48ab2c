package domain

import (
	"errors"
	"strings"
	"time"
)

// RescheduleNote is the history note attached to every reschedule.
const RescheduleNote = "Rescheduled for delivery"

// DefaultRescheduleWindowLength is applied when a reschedule omits its end time.
const DefaultRescheduleWindowLength = 3 * time.Hour

const (
	rescheduleDateLayout = "2006-01-02"
	rescheduleTimeLayout = "15:04"
)

var (
	ErrInvalidRescheduleDate   = errors.New("reschedule date must be YYYY-MM-DD")
	ErrInvalidRescheduleTime   = errors.New("reschedule times must be HH:MM")
	ErrInvalidRescheduleWindow = errors.New("reschedule end time must not precede start time")
)

// Package is the central shipment aggregate.
type Package struct {
	ID                  string
	TrackingCode        string
	ShipmentType        ShipmentType
	SenderDistributorID *string
	SenderClientID      *string
	RecipientID         string
	OperatorID          *string
	CourierID           *string
	OriginBranchID      string
	DestinationBranchID *string
	DestinationText     string
	Description         string
	Status              Status
	CreatedAt           time.Time
	Reschedule          *RescheduleWindow
}

// SenderID returns the sender reference selected by the shipment type.
func (p *Package) SenderID() string {
	var ref *string
	if p.ShipmentType == ShipmentClientToClient {
		ref = p.SenderClientID
	} else {
		ref = p.SenderDistributorID
	}
	if ref == nil {
		return ""
	}
	return *ref
}

// AssignedTo reports whether the courier is assigned to the package.
func (p *Package) AssignedTo(courierID string) bool {
	return p.CourierID != nil && *p.CourierID == courierID
}

// NewPackage carries the input accepted when registering a shipment.
type NewPackage struct {
	ShipmentType        ShipmentType
	SenderID            string
	RecipientID         string
	OperatorID          *string
	CourierID           *string
	OriginBranchID      string
	DestinationBranchID *string
	DestinationText     string
	Description         string
}

// Build turns the input into a package in its initial state.
func (n NewPackage) Build(createdAt time.Time) *Package {
	pkg := &Package{
		ShipmentType:        n.ShipmentType,
		RecipientID:         n.RecipientID,
		OperatorID:          n.OperatorID,
		CourierID:           n.CourierID,
		OriginBranchID:      n.OriginBranchID,
		DestinationBranchID: n.DestinationBranchID,
		DestinationText:     strings.TrimSpace(n.DestinationText),
		Description:         strings.TrimSpace(n.Description),
		Status:              StatusInWarehouse,
		CreatedAt:           createdAt.UTC(),
	}
	if pkg.ShipmentType == "" {
		pkg.ShipmentType = ShipmentDistributorToClient
	}
	sender := n.SenderID
	if pkg.ShipmentType == ShipmentClientToClient {
		pkg.SenderClientID = &sender
	} else {
		pkg.SenderDistributorID = &sender
	}
	return pkg
}

// HistoryEntry is one immutable audit record of a status change.
type HistoryEntry struct {
	PackageID string
	Status    Status
	Timestamp time.Time
	Note      string
}

// RescheduleWindow is a planned delivery slot recorded after a failed attempt.
type RescheduleWindow struct {
	Date      string
	StartTime string
	EndTime   string
	Address   string
}

// Normalize validates the window and fills in the end time when absent.
func (w RescheduleWindow) Normalize() (RescheduleWindow, error) {
	w.Date = strings.TrimSpace(w.Date)
	w.StartTime = strings.TrimSpace(w.StartTime)
	w.EndTime = strings.TrimSpace(w.EndTime)
	w.Address = strings.TrimSpace(w.Address)

	if _, err := time.Parse(rescheduleDateLayout, w.Date); err != nil {
		return w, ErrInvalidRescheduleDate
	}
	start, err := time.Parse(rescheduleTimeLayout, w.StartTime)
	if err != nil {
		return w, ErrInvalidRescheduleTime
	}
	if w.EndTime == "" {
		end := start.Add(DefaultRescheduleWindowLength)
		if end.Day() != start.Day() {
			end = time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 0, 0, time.UTC)
		}
		w.EndTime = end.Format(rescheduleTimeLayout)
		return w, nil
	}
	end, err := time.Parse(rescheduleTimeLayout, w.EndTime)
	if err != nil {
		return w, ErrInvalidRescheduleTime
	}
	if end.Before(start) {
		return w, ErrInvalidRescheduleWindow
	}
	return w, nil
}
