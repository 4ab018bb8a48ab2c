package domain

import (
	"errors"
	"strings"
)

// ShipmentType tells where a package originates.
type ShipmentType string

const (
	ShipmentDistributorToClient ShipmentType = "distributor_to_client"
	ShipmentClientToClient      ShipmentType = "client_to_client"
)

// ErrUnknownShipmentType is returned for values outside the two known types.
var ErrUnknownShipmentType = errors.New("unknown shipment type")

// ParseShipmentType resolves a raw value, defaulting blanks to
// distributor_to_client.
func ParseShipmentType(raw string) (ShipmentType, error) {
	switch ShipmentType(strings.TrimSpace(raw)) {
	case "", ShipmentDistributorToClient:
		return ShipmentDistributorToClient, nil
	case ShipmentClientToClient:
		return ShipmentClientToClient, nil
	}
	return "", ErrUnknownShipmentType
}

// SenderKind labels the sender profile attached to package views.
type SenderKind string

const (
	SenderKindDistributor SenderKind = "Distributor"
	SenderKindClient      SenderKind = "Client"
)

// SenderKind returns the profile kind a shipment type draws its sender from.
func (t ShipmentType) SenderKind() SenderKind {
	if t == ShipmentClientToClient {
		return SenderKindClient
	}
	return SenderKindDistributor
}
