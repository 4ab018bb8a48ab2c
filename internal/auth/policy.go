package auth

import (
	"github.com/spec-kit/courier-service/internal/domain"
	apperrors "github.com/spec-kit/courier-service/pkg/util/errorutil"
)

// CanViewPackage reports whether the identity may read the package. Callers
// without the view-all capability only see their own assignments.
func CanViewPackage(identity *Identity, pkg *domain.Package) bool {
	if identity.Can(CapViewAllPackages) {
		return true
	}
	return identity != nil && pkg.AssignedTo(identity.ID)
}

// AuthorizeStatusChange decides whether the identity may move the package to
// next. Holders of CapSetAnyStatus may set any catalog status. Holders of
// CapReportDeliveryOutcome may only report Delivered or Failed Attempt on
// packages assigned to them.
func AuthorizeStatusChange(identity *Identity, pkg *domain.Package, next domain.Status) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if identity.Can(CapSetAnyStatus) {
		return nil
	}
	if !identity.Can(CapReportDeliveryOutcome) {
		return apperrors.NewForbidden("not allowed to change package status")
	}
	if !pkg.AssignedTo(identity.ID) {
		return apperrors.NewForbidden("package is not assigned to you")
	}
	switch next {
	case domain.StatusDelivered, domain.StatusFailedAttempt:
		return nil
	case domain.StatusInWarehouse, domain.StatusInTransit:
		return apperrors.NewForbidden("couriers may only report Delivered or Failed Attempt")
	}
	return apperrors.NewValidationError("unknown status", map[string]any{"status": string(next)})
}
