// Package lifecycle owns package creation, status changes, rescheduling and
// the tracking read paths. It does no authorization and no transition
// adjacency checks; callers decide which moves are legal.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/events"
	"github.com/spec-kit/courier-service/internal/repository"
)

// Engine coordinates package writes against a storage adapter.
type Engine struct {
	packages   repository.PackageRepository
	codes      domain.CodeSource
	clock      func() time.Time
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Packages   repository.PackageRepository
	Codes      domain.CodeSource
	Clock      func() time.Time
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	e := &Engine{
		packages:   deps.Packages,
		codes:      deps.Codes,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.codes == nil {
		e.codes = domain.NewRandomCodeSource(e.clock)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// CreatePackage stores a new package in In Warehouse together with its single
// initial history entry. Relationship validation is the caller's job.
func (e *Engine) CreatePackage(ctx context.Context, input domain.NewPackage) (*domain.Package, error) {
	pkg := input.Build(e.now())
	if err := e.packages.Create(ctx, pkg, e.codes); err != nil {
		return nil, err
	}
	e.logger.Info("package created",
		zap.String("package_id", pkg.ID),
		zap.String("tracking_code", pkg.TrackingCode))
	e.publish(ctx, pkg, events.EventPackageCreated, events.PackageCreatedPayload{
		ShipmentType:   pkg.ShipmentType,
		OriginBranchID: pkg.OriginBranchID,
		CourierID:      pkg.CourierID,
	})
	return pkg, nil
}

// UpdateStatus sets the current status and appends a history entry. Repeating
// the current status still appends. Returns repository.ErrNotFound for an
// unknown id.
func (e *Engine) UpdateStatus(ctx context.Context, id string, status domain.Status, note string) (*domain.Package, error) {
	if !status.Valid() {
		return nil, domain.ErrUnknownStatus
	}
	pkg, err := e.packages.UpdateStatus(ctx, id, domain.HistoryEntry{
		PackageID: id,
		Status:    status,
		Timestamp: e.now(),
		Note:      note,
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, pkg, events.EventPackageStatusChanged, events.PackageStatusChangedPayload{
		NewStatus: status,
		Note:      note,
	})
	return pkg, nil
}

// Reschedule records a delivery window and forces the package back to In
// Transit. A non-blank address replaces the destination text.
func (e *Engine) Reschedule(ctx context.Context, id string, window domain.RescheduleWindow) (*domain.Package, error) {
	normalized, err := window.Normalize()
	if err != nil {
		return nil, err
	}
	pkg, err := e.packages.Reschedule(ctx, id, normalized, domain.HistoryEntry{
		PackageID: id,
		Status:    domain.StatusInTransit,
		Timestamp: e.now(),
		Note:      domain.RescheduleNote,
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, pkg, events.EventPackageRescheduled, events.PackageRescheduledPayload{
		Date:      normalized.Date,
		StartTime: normalized.StartTime,
		EndTime:   normalized.EndTime,
		Address:   normalized.Address,
	})
	return pkg, nil
}

// TrackingView resolves the public view for a tracking code.
func (e *Engine) TrackingView(ctx context.Context, code string) (*domain.TrackingView, error) {
	detail, err := e.packages.GetDetailByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return detail.TrackingView(), nil
}

// ListByCourier returns the joined packages assigned to the courier.
func (e *Engine) ListByCourier(ctx context.Context, courierID string) ([]domain.PackageDetail, error) {
	return e.packages.ListDetailed(ctx, repository.PackageFilter{CourierID: &courierID})
}

// Get returns the bare package.
func (e *Engine) Get(ctx context.Context, id string) (*domain.Package, error) {
	return e.packages.GetByID(ctx, id)
}

// Detail returns the joined package with its history.
func (e *Engine) Detail(ctx context.Context, id string) (*domain.PackageDetail, error) {
	return e.packages.GetDetail(ctx, id)
}

// List returns bare packages, optionally filtered by status.
func (e *Engine) List(ctx context.Context, status *domain.Status) ([]domain.Package, error) {
	return e.packages.List(ctx, repository.PackageFilter{Status: status})
}

// ListDetailed returns joined packages, optionally filtered by status.
func (e *Engine) ListDetailed(ctx context.Context, status *domain.Status) ([]domain.PackageDetail, error) {
	return e.packages.ListDetailed(ctx, repository.PackageFilter{Status: status})
}

func (e *Engine) publish(ctx context.Context, pkg *domain.Package, eventType events.EventType, payload interface{}) {
	if e.dispatcher == nil {
		return
	}
	err := e.dispatcher.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		PackageID:    pkg.ID,
		TrackingCode: pkg.TrackingCode,
		Timestamp:    e.now(),
		Payload:      payload,
	})
	if err != nil {
		e.logger.Warn("failed to publish package event",
			zap.String("event_type", string(eventType)),
			zap.String("package_id", pkg.ID),
			zap.Error(err))
	}
}
