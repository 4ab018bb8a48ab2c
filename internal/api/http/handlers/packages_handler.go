package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/courier-service/internal/api/dto"
	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/service"
)

// PackagesHandler serves the back office package endpoints.
type PackagesHandler struct {
	packages *service.PackageService
}

// NewPackagesHandler constructs handler.
func NewPackagesHandler(packageService *service.PackageService) *PackagesHandler {
	return &PackagesHandler{packages: packageService}
}

// List GET /api/packages.
func (h *PackagesHandler) List(c *fiber.Ctx) error {
	identity, err := principal(c)
	if err != nil {
		return err
	}
	pkgs, err := h.packages.List(c.UserContext(), identity, c.Query("status"))
	if err != nil {
		return err
	}
	items := make([]dto.PackageResponse, 0, len(pkgs))
	for i := range pkgs {
		items = append(items, packageResponse(&pkgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListExpanded GET /api/packages/expanded.
func (h *PackagesHandler) ListExpanded(c *fiber.Ctx) error {
	identity, err := principal(c)
	if err != nil {
		return err
	}
	details, err := h.packages.ListExpanded(c.UserContext(), identity, c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": packageDetailList(details)})
}

// ListMine GET /api/couriers/me/packages.
func (h *PackagesHandler) ListMine(c *fiber.Ctx) error {
	identity, err := principal(c)
	if err != nil {
		return err
	}
	details, err := h.packages.ListMine(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": packageDetailList(details)})
}

// Get GET /api/packages/:id.
func (h *PackagesHandler) Get(c *fiber.Ctx) error {
	identity, err := principal(c)
	if err != nil {
		return err
	}
	detail, err := h.packages.Get(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": packageDetailResponse(detail)})
}

// Create POST /api/packages.
func (h *PackagesHandler) Create(c *fiber.Ctx) error {
	identity, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreatePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	detail, err := h.packages.Create(c.UserContext(), identity, service.CreatePackageInput{
		ShipmentType:        req.ShipmentType,
		SenderID:            req.SenderID,
		RecipientID:         req.RecipientID,
		OperatorID:          req.OperatorID,
		CourierID:           req.CourierID,
		OriginBranchID:      req.OriginBranchID,
		DestinationBranchID: req.DestinationBranchID,
		DestinationText:     req.DestinationText,
		Description:         req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": packageDetailResponse(detail)})
}

// UpdateStatus PATCH /api/packages/:id/status.
func (h *PackagesHandler) UpdateStatus(c *fiber.Ctx) error {
	identity, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	pkg, err := h.packages.UpdateStatus(c.UserContext(), identity, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": packageResponse(pkg)})
}

// Reschedule POST /api/packages/:id/reschedule.
func (h *PackagesHandler) Reschedule(c *fiber.Ctx) error {
	identity, err := principal(c)
	if err != nil {
		return err
	}
	window, err := parseReschedule(c)
	if err != nil {
		return err
	}
	pkg, err := h.packages.Reschedule(c.UserContext(), identity, c.Params("id"), window)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": packageResponse(pkg)})
}

func parseReschedule(c *fiber.Ctx) (domain.RescheduleWindow, error) {
	var req dto.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.RescheduleWindow{}, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	return domain.RescheduleWindow{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Address:   req.Address,
	}, nil
}
