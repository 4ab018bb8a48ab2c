package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/courier-service/internal/domain"
)

const identityKey = "auth_identity"

// SuperAdminID is the identity id used for the environment credential pair.
const SuperAdminID = "admin-env"

// Identity is the resolved caller attached to an authenticated request.
type Identity struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         domain.RoleName `json:"role"`
	BranchID     *string         `json:"branch_id,omitempty"`
	Active       bool            `json:"active"`
	Capabilities Capabilities    `json:"-"`
}

// NewIdentity builds an identity for a stored user.
func NewIdentity(user *domain.User) *Identity {
	return &Identity{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.RoleName,
		BranchID:     user.BranchID,
		Active:       user.Active,
		Capabilities: CapabilitiesFor(user.RoleName),
	}
}

// SuperAdminIdentity builds the identity for the environment super admin.
func SuperAdminIdentity(username string) *Identity {
	return &Identity{
		ID:           SuperAdminID,
		Name:         "Super Admin",
		Email:        username,
		Role:         domain.RoleAdministrator,
		Active:       true,
		Capabilities: CapabilitiesFor(domain.RoleAdministrator),
	}
}

// Can reports whether the identity holds the capability.
func (i *Identity) Can(c Capability) bool {
	return i != nil && i.Capabilities.Has(c)
}

// Is reports whether the identity holds the role.
func (i *Identity) Is(role domain.RoleName) bool {
	return i != nil && i.Role == role
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
