package dto

import (
	"time"

	"github.com/spec-kit/courier-service/internal/domain"
)

// CreatePackageRequest payload.
type CreatePackageRequest struct {
	ShipmentType        string  `json:"shipment_type"`
	SenderID            string  `json:"sender_id"`
	RecipientID         string  `json:"recipient_id"`
	OperatorID          *string `json:"operator_id"`
	CourierID           *string `json:"courier_id"`
	OriginBranchID      string  `json:"origin_branch_id"`
	DestinationBranchID *string `json:"destination_branch_id"`
	DestinationText     string  `json:"destination_text"`
	Description         string  `json:"description"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// RescheduleRequest payload. EndTime defaults to three hours after StartTime.
type RescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Address   string `json:"address"`
}

// RescheduleResponse describes a planned delivery window.
type RescheduleResponse struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Address   string `json:"address,omitempty"`
}

// HistoryEntryResponse is one status ledger row.
type HistoryEntryResponse struct {
	Status    domain.Status `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Note      string        `json:"note,omitempty"`
}

// PackageResponse is the bare package.
type PackageResponse struct {
	ID                  string              `json:"id"`
	TrackingCode        string              `json:"tracking_code"`
	ShipmentType        domain.ShipmentType `json:"shipment_type"`
	SenderDistributorID *string             `json:"sender_distributor_id"`
	SenderClientID      *string             `json:"sender_client_id"`
	RecipientID         string              `json:"recipient_id"`
	OperatorID          *string             `json:"operator_id"`
	CourierID           *string             `json:"courier_id"`
	OriginBranchID      string              `json:"origin_branch_id"`
	DestinationBranchID *string             `json:"destination_branch_id"`
	DestinationText     string              `json:"destination_text"`
	Description         string              `json:"description"`
	Status              domain.Status       `json:"status"`
	CreatedAt           time.Time           `json:"created_at"`
	Reschedule          *RescheduleResponse `json:"reschedule"`
}

// PartyResponse is the sender profile, distributor or client.
type PartyResponse struct {
	ID        string            `json:"id"`
	Kind      domain.SenderKind `json:"kind"`
	Name      string            `json:"name"`
	LegalName string            `json:"legal_name,omitempty"`
	Document  string            `json:"document,omitempty"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email,omitempty"`
	Address   string            `json:"address"`
}

// PackageDetailResponse is a package joined with related entities and history.
type PackageDetailResponse struct {
	PackageResponse
	SenderKind        domain.SenderKind      `json:"sender_kind"`
	Sender            *PartyResponse         `json:"sender"`
	Recipient         *ClientResponse        `json:"recipient"`
	Operator          *StaffContactResponse  `json:"operator"`
	Courier           *StaffContactResponse  `json:"courier"`
	OriginBranch      *BranchResponse        `json:"origin_branch"`
	DestinationBranch *BranchResponse        `json:"destination_branch"`
	History           []HistoryEntryResponse `json:"history"`
}

// TrackingResponse is the public tracking page payload.
type TrackingResponse struct {
	TrackingCode      string                 `json:"tracking_code"`
	Status            domain.Status          `json:"status"`
	Description       string                 `json:"description"`
	DestinationText   string                 `json:"destination_text"`
	ShipmentType      domain.ShipmentType    `json:"shipment_type"`
	SenderKind        domain.SenderKind      `json:"sender_kind"`
	Sender            *PartyResponse         `json:"sender"`
	Recipient         *ClientResponse        `json:"recipient"`
	Operator          *StaffContactResponse  `json:"operator"`
	Courier           *StaffContactResponse  `json:"courier"`
	OriginBranch      *BranchResponse        `json:"origin_branch"`
	DestinationBranch *BranchResponse        `json:"destination_branch"`
	Reschedule        *RescheduleResponse    `json:"reschedule"`
	History           []HistoryEntryResponse `json:"history"`
}
