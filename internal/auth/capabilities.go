package auth

import "github.com/spec-kit/courier-service/internal/domain"

// Capability is one permitted operation.
type Capability uint16

const (
	CapCreatePackage Capability = 1 << iota
	CapViewAllPackages
	CapSetAnyStatus
	CapReportDeliveryOutcome
	CapReschedule
	CapManageReferenceData
	CapManageUsers
)

// Capabilities is a set of capabilities.
type Capabilities uint16

// Has reports whether every capability in c is in the set.
func (s Capabilities) Has(c Capability) bool {
	return uint16(s)&uint16(c) == uint16(c)
}

func capabilitySet(caps ...Capability) Capabilities {
	var set Capabilities
	for _, c := range caps {
		set |= Capabilities(c)
	}
	return set
}

var (
	operatorCapabilities = capabilitySet(
		CapCreatePackage,
		CapViewAllPackages,
		CapSetAnyStatus,
		CapReschedule,
		CapManageReferenceData,
	)
	administratorCapabilities = operatorCapabilities | capabilitySet(CapManageUsers)
	courierCapabilities       = capabilitySet(CapReportDeliveryOutcome)
)

// CapabilitiesFor resolves the capability set granted to a role.
func CapabilitiesFor(role domain.RoleName) Capabilities {
	switch role {
	case domain.RoleAdministrator:
		return administratorCapabilities
	case domain.RoleOperator:
		return operatorCapabilities
	case domain.RoleCourier:
		return courierCapabilities
	}
	return 0
}
