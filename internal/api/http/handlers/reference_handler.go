package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/courier-service/internal/api/dto"
	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/service"
)

// ReferenceHandler manages branches, clients and distributors.
type ReferenceHandler struct {
	refs *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(refService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refService}
}

// ListBranches GET /api/branches.
func (h *ReferenceHandler) ListBranches(c *fiber.Ctx) error {
	branches, err := h.refs.ListBranches(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.BranchResponse, 0, len(branches))
	for i := range branches {
		items = append(items, branchResponse(&branches[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateBranch POST /api/branches.
func (h *ReferenceHandler) CreateBranch(c *fiber.Ctx) error {
	return h.saveBranch(c, "", http.StatusCreated)
}

// UpdateBranch PUT /api/branches/:id.
func (h *ReferenceHandler) UpdateBranch(c *fiber.Ctx) error {
	return h.saveBranch(c, c.Params("id"), http.StatusOK)
}

func (h *ReferenceHandler) saveBranch(c *fiber.Ctx, id string, status int) error {
	var req dto.BranchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	branch, err := h.refs.SaveBranch(c.UserContext(), domain.Branch{ID: id, Name: req.Name, Address: req.Address})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": branchResponse(branch)})
}

// ListClients GET /api/clients.
func (h *ReferenceHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.refs.ListClients(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, clientResponse(&clients[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateClient POST /api/clients.
func (h *ReferenceHandler) CreateClient(c *fiber.Ctx) error {
	return h.saveClient(c, "", http.StatusCreated)
}

// UpdateClient PUT /api/clients/:id.
func (h *ReferenceHandler) UpdateClient(c *fiber.Ctx) error {
	return h.saveClient(c, c.Params("id"), http.StatusOK)
}

func (h *ReferenceHandler) saveClient(c *fiber.Ctx, id string, status int) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	client, err := h.refs.SaveClient(c.UserContext(), domain.Client{
		ID:       id,
		Type:     domain.ClientType(req.Type),
		Name:     req.Name,
		Document: req.Document,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": clientResponse(client)})
}

// ListDistributors GET /api/distributors.
func (h *ReferenceHandler) ListDistributors(c *fiber.Ctx) error {
	distributors, err := h.refs.ListDistributors(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DistributorResponse, 0, len(distributors))
	for i := range distributors {
		items = append(items, distributorResponse(&distributors[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDistributor POST /api/distributors.
func (h *ReferenceHandler) CreateDistributor(c *fiber.Ctx) error {
	return h.saveDistributor(c, "", http.StatusCreated)
}

// UpdateDistributor PUT /api/distributors/:id.
func (h *ReferenceHandler) UpdateDistributor(c *fiber.Ctx) error {
	return h.saveDistributor(c, c.Params("id"), http.StatusOK)
}

func (h *ReferenceHandler) saveDistributor(c *fiber.Ctx, id string, status int) error {
	var req dto.DistributorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	distributor, err := h.refs.SaveDistributor(c.UserContext(), domain.Distributor{
		ID:        id,
		TradeName: req.TradeName,
		LegalName: req.LegalName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": distributorResponse(distributor)})
}
