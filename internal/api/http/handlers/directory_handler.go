package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/courier-service/internal/api/dto"
	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/service"
)

// DirectoryHandler serves staff directories and the fixed catalogs.
type DirectoryHandler struct {
	users *service.UserService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(userService *service.UserService) *DirectoryHandler {
	return &DirectoryHandler{users: userService}
}

// Operators GET /api/operators.
func (h *DirectoryHandler) Operators(c *fiber.Ctx) error {
	users, err := h.users.ListOperators(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contactList(users)})
}

// OperatorPhone GET /api/operators/phone.
func (h *DirectoryHandler) OperatorPhone(c *fiber.Ctx) error {
	phone, err := h.users.OperatorPhone(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"phone": phone}})
}

// Couriers GET /api/couriers.
func (h *DirectoryHandler) Couriers(c *fiber.Ctx) error {
	users, err := h.users.ListCouriers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contactList(users)})
}

// Roles GET /api/roles.
func (h *DirectoryHandler) Roles(c *fiber.Ctx) error {
	roles, err := h.users.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		items = append(items, dto.RoleResponse{ID: role.ID, Name: role.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Statuses GET /api/statuses.
func (h *DirectoryHandler) Statuses(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.Statuses()})
}

func contactList(users []domain.User) []dto.StaffContactResponse {
	items := make([]dto.StaffContactResponse, 0, len(users))
	for i := range users {
		items = append(items, *contactResponse(users[i].Contact()))
	}
	return items
}
