package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/courier-service/internal/service"
)

// TrackingHandler serves the public, unauthenticated tracking page.
type TrackingHandler struct {
	packages *service.PackageService
}

// NewTrackingHandler constructs handler.
func NewTrackingHandler(packageService *service.PackageService) *TrackingHandler {
	return &TrackingHandler{packages: packageService}
}

// Track GET /api/tracking/:code.
func (h *TrackingHandler) Track(c *fiber.Ctx) error {
	view, err := h.packages.Track(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trackingResponse(view)})
}

// Reschedule POST /api/tracking/:code/reschedule.
func (h *TrackingHandler) Reschedule(c *fiber.Ctx) error {
	window, err := parseReschedule(c)
	if err != nil {
		return err
	}
	view, err := h.packages.RescheduleByCode(c.UserContext(), c.Params("code"), window)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trackingResponse(view)})
}
