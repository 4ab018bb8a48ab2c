package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/lifecycle"
	"github.com/spec-kit/courier-service/internal/repository"
	apperrors "github.com/spec-kit/courier-service/pkg/util/errorutil"
)

// PackageService validates caller input and scope before delegating to the
// lifecycle engine.
type PackageService struct {
	engine       *lifecycle.Engine
	users        repository.UserRepository
	branches     repository.BranchRepository
	clients      repository.ClientRepository
	distributors repository.DistributorRepository
	logger       *zap.Logger
}

// PackageDependencies bundles collaborators for the package service.
type PackageDependencies struct {
	Engine          *lifecycle.Engine
	UserRepo        repository.UserRepository
	BranchRepo      repository.BranchRepository
	ClientRepo      repository.ClientRepository
	DistributorRepo repository.DistributorRepository
	Logger          *zap.Logger
}

// CreatePackageInput describes a package registration request.
type CreatePackageInput struct {
	ShipmentType        string
	SenderID            string
	RecipientID         string
	OperatorID          *string
	CourierID           *string
	OriginBranchID      string
	DestinationBranchID *string
	DestinationText     string
	Description         string
}

// NewPackageService constructs the service.
func NewPackageService(deps PackageDependencies) *PackageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageService{
		engine:       deps.Engine,
		users:        deps.UserRepo,
		branches:     deps.BranchRepo,
		clients:      deps.ClientRepo,
		distributors: deps.DistributorRepo,
		logger:       logger,
	}
}

// Create registers a package after checking every referenced entity.
func (s *PackageService) Create(ctx context.Context, identity *auth.Identity, input CreatePackageInput) (*domain.PackageDetail, error) {
	if !identity.Can(auth.CapCreatePackage) {
		return nil, apperrors.NewForbidden("not allowed to create packages")
	}

	shipmentType, err := domain.ParseShipmentType(input.ShipmentType)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"shipment_type": input.ShipmentType})
	}

	spec := domain.NewPackage{
		ShipmentType:        shipmentType,
		SenderID:            strings.TrimSpace(input.SenderID),
		RecipientID:         strings.TrimSpace(input.RecipientID),
		OperatorID:          trimmedOrNil(input.OperatorID),
		CourierID:           trimmedOrNil(input.CourierID),
		OriginBranchID:      strings.TrimSpace(input.OriginBranchID),
		DestinationBranchID: trimmedOrNil(input.DestinationBranchID),
		DestinationText:     strings.TrimSpace(input.DestinationText),
		Description:         strings.TrimSpace(input.Description),
	}

	missing := missingFields(
		field{"sender_id", spec.SenderID},
		field{"recipient_id", spec.RecipientID},
		field{"origin_branch_id", spec.OriginBranchID},
		field{"destination_text", spec.DestinationText},
	)
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	if shipmentType == domain.ShipmentClientToClient && spec.SenderID == spec.RecipientID {
		return nil, apperrors.NewValidationError("sender and recipient must differ", map[string]any{
			"sender_id":    spec.SenderID,
			"recipient_id": spec.RecipientID,
		})
	}

	if spec.OperatorID == nil && identity.Is(domain.RoleOperator) {
		callerID := identity.ID
		spec.OperatorID = &callerID
	}

	if err := s.checkReferences(ctx, spec); err != nil {
		return nil, err
	}

	pkg, err := s.engine.CreatePackage(ctx, spec)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail, err := s.engine.Detail(ctx, pkg.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return detail, nil
}

func (s *PackageService) checkReferences(ctx context.Context, spec domain.NewPackage) error {
	switch spec.ShipmentType.SenderKind() {
	case domain.SenderKindClient:
		if _, err := s.clients.GetByID(ctx, spec.SenderID); err != nil {
			return missingReference(err, "sender_id", spec.SenderID, "sender client")
		}
	default:
		if _, err := s.distributors.GetByID(ctx, spec.SenderID); err != nil {
			return missingReference(err, "sender_id", spec.SenderID, "sender distributor")
		}
	}
	if _, err := s.clients.GetByID(ctx, spec.RecipientID); err != nil {
		return missingReference(err, "recipient_id", spec.RecipientID, "recipient client")
	}
	if _, err := s.branches.GetByID(ctx, spec.OriginBranchID); err != nil {
		return missingReference(err, "origin_branch_id", spec.OriginBranchID, "origin branch")
	}
	if spec.DestinationBranchID != nil {
		if _, err := s.branches.GetByID(ctx, *spec.DestinationBranchID); err != nil {
			return missingReference(err, "destination_branch_id", *spec.DestinationBranchID, "destination branch")
		}
	}
	if spec.OperatorID != nil {
		if err := s.checkStaffRole(ctx, *spec.OperatorID, "operator_id", domain.RoleOperator); err != nil {
			return err
		}
	}
	if spec.CourierID != nil {
		if err := s.checkStaffRole(ctx, *spec.CourierID, "courier_id", domain.RoleCourier); err != nil {
			return err
		}
	}
	return nil
}

func (s *PackageService) checkStaffRole(ctx context.Context, id, field string, role domain.RoleName) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return missingReference(err, field, id, "user")
	}
	if !user.HasRole(role) {
		return apperrors.NewValidationError("user does not hold the "+string(role)+" role", map[string]any{field: id})
	}
	return nil
}

// UpdateStatus moves a package to a new status on behalf of the caller.
func (s *PackageService) UpdateStatus(ctx context.Context, identity *auth.Identity, id, rawStatus, note string) (*domain.Package, error) {
	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{
			"status":  rawStatus,
			"allowed": domain.Statuses(),
		})
	}

	pkg, err := s.engine.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "package", id)
	}
	if err := auth.AuthorizeStatusChange(identity, pkg, status); err != nil {
		return nil, err
	}

	updated, err := s.engine.UpdateStatus(ctx, id, status, strings.TrimSpace(note))
	if err != nil {
		return nil, notFound(err, "package", id)
	}
	return updated, nil
}

// Reschedule records a delivery window from the back office.
func (s *PackageService) Reschedule(ctx context.Context, identity *auth.Identity, id string, window domain.RescheduleWindow) (*domain.Package, error) {
	if !identity.Can(auth.CapReschedule) {
		return nil, apperrors.NewForbidden("not allowed to reschedule packages")
	}
	updated, err := s.engine.Reschedule(ctx, id, window)
	if err != nil {
		return nil, notFound(err, "package", id)
	}
	return updated, nil
}

// RescheduleByCode lets a recipient pick a new window from the tracking page.
// Only packages whose last attempt failed can be rescheduled this way.
func (s *PackageService) RescheduleByCode(ctx context.Context, code string, window domain.RescheduleWindow) (*domain.TrackingView, error) {
	code = strings.TrimSpace(code)
	view, err := s.engine.TrackingView(ctx, code)
	if err != nil {
		return nil, notFound(err, "package", code)
	}
	if view.Status != domain.StatusFailedAttempt {
		return nil, apperrors.NewConflict("package can only be rescheduled after a failed delivery attempt", map[string]any{
			"status": view.Status,
		})
	}
	if _, err := s.engine.Reschedule(ctx, view.ID, window); err != nil {
		return nil, notFound(err, "package", code)
	}
	return s.Track(ctx, code)
}

// Track resolves the public tracking view.
func (s *PackageService) Track(ctx context.Context, code string) (*domain.TrackingView, error) {
	code = strings.TrimSpace(code)
	view, err := s.engine.TrackingView(ctx, code)
	if err != nil {
		return nil, notFound(err, "package", code)
	}
	return view, nil
}

// Get returns the joined package if the caller may see it.
func (s *PackageService) Get(ctx context.Context, identity *auth.Identity, id string) (*domain.PackageDetail, error) {
	detail, err := s.engine.Detail(ctx, id)
	if err != nil {
		return nil, notFound(err, "package", id)
	}
	if !auth.CanViewPackage(identity, &detail.Package) {
		return nil, apperrors.NewForbidden("package is not assigned to you")
	}
	return detail, nil
}

// List returns bare packages, scoped to the caller's assignments when the
// caller cannot see every package.
func (s *PackageService) List(ctx context.Context, identity *auth.Identity, rawStatus string) ([]domain.Package, error) {
	status, err := optionalStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if identity.Can(auth.CapViewAllPackages) {
		pkgs, err := s.engine.List(ctx, status)
		return pkgs, apperrors.MapError(err)
	}
	details, err := s.scopedDetails(ctx, identity, status)
	if err != nil {
		return nil, err
	}
	pkgs := make([]domain.Package, 0, len(details))
	for _, detail := range details {
		pkgs = append(pkgs, detail.Package)
	}
	return pkgs, nil
}

// ListExpanded returns joined packages with history, scoped like List.
func (s *PackageService) ListExpanded(ctx context.Context, identity *auth.Identity, rawStatus string) ([]domain.PackageDetail, error) {
	status, err := optionalStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if identity.Can(auth.CapViewAllPackages) {
		details, err := s.engine.ListDetailed(ctx, status)
		return details, apperrors.MapError(err)
	}
	return s.scopedDetails(ctx, identity, status)
}

// ListMine returns the packages assigned to the calling courier.
func (s *PackageService) ListMine(ctx context.Context, identity *auth.Identity) ([]domain.PackageDetail, error) {
	if !identity.Is(domain.RoleCourier) {
		return nil, apperrors.NewForbidden("only couriers have assigned packages")
	}
	details, err := s.engine.ListByCourier(ctx, identity.ID)
	return details, apperrors.MapError(err)
}

func (s *PackageService) scopedDetails(ctx context.Context, identity *auth.Identity, status *domain.Status) ([]domain.PackageDetail, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	details, err := s.engine.ListByCourier(ctx, identity.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if status == nil {
		return details, nil
	}
	filtered := details[:0]
	for _, detail := range details {
		if detail.Status == *status {
			filtered = append(filtered, detail)
		}
	}
	return filtered, nil
}

func optionalStatus(raw string) (*domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{
			"status":  raw,
			"allowed": domain.Statuses(),
		})
	}
	return &status, nil
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

func missingReference(err error, field, id, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewValidationError(resource+" not found", map[string]any{field: id})
	}
	return apperrors.MapError(err)
}

type field struct {
	name  string
	value string
}

func missingFields(fields ...field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
