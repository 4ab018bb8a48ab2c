package domain

import (
	"errors"
	"strings"
)

// Status enumerates the lifecycle states of a package. The string values are
// part of the wire and storage contract.
type Status string

const (
	StatusInWarehouse   Status = "In Warehouse"
	StatusInTransit     Status = "In Transit"
	StatusDelivered     Status = "Delivered"
	StatusFailedAttempt Status = "Failed Attempt"
)

// ErrUnknownStatus is returned when a value is outside the status catalog.
var ErrUnknownStatus = errors.New("unknown package status")

var statusCatalog = []Status{
	StatusInWarehouse,
	StatusInTransit,
	StatusDelivered,
	StatusFailedAttempt,
}

// Statuses returns the catalog in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statusCatalog))
	copy(out, statusCatalog)
	return out
}

// ParseStatus resolves a raw value against the catalog. Matching is exact
// apart from surrounding whitespace.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.TrimSpace(raw))
	if !candidate.Valid() {
		return "", ErrUnknownStatus
	}
	return candidate, nil
}

// Valid reports whether the status belongs to the catalog.
func (s Status) Valid() bool {
	switch s {
	case StatusInWarehouse, StatusInTransit, StatusDelivered, StatusFailedAttempt:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
