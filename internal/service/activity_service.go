package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/events"
	"github.com/spec-kit/courier-service/internal/observability"
)

// ActivityService records package events as structured log lines and metrics.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventPackageCreated, a.handlePackageCreated)
	a.dispatcher.Subscribe(events.EventPackageStatusChanged, a.handleStatusChanged)
	a.dispatcher.Subscribe(events.EventPackageRescheduled, a.handleRescheduled)
}

func (a *ActivityService) handlePackageCreated(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.PackageCreatedPayload)
	a.logger.Info("PackageCreated",
		zap.String("package_id", event.PackageID),
		zap.String("tracking_code", event.TrackingCode),
		zap.String("shipment_type", string(payload.ShipmentType)),
		zap.String("origin_branch_id", payload.OriginBranchID))
	a.metrics.RecordPackageCreated(string(payload.ShipmentType))
	return nil
}

func (a *ActivityService) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.PackageStatusChangedPayload)
	a.logger.Info("PackageStatusChanged",
		zap.String("package_id", event.PackageID),
		zap.String("tracking_code", event.TrackingCode),
		zap.String("status", string(payload.NewStatus)),
		zap.String("note", payload.Note))
	a.metrics.RecordStatusChange(string(payload.NewStatus))
	return nil
}

func (a *ActivityService) handleRescheduled(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.PackageRescheduledPayload)
	a.logger.Info("PackageRescheduled",
		zap.String("package_id", event.PackageID),
		zap.String("tracking_code", event.TrackingCode),
		zap.String("date", payload.Date),
		zap.String("window", payload.StartTime+"-"+payload.EndTime))
	a.metrics.RecordReschedule()
	return nil
}
