package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/courier-service/internal/domain"
	apperrors "github.com/spec-kit/courier-service/pkg/util/errorutil"
)

// RequireAuthenticated ensures an identity was resolved.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireCapability ensures the caller holds every listed capability.
func RequireCapability(caps ...Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, capability := range caps {
			if !identity.Can(capability) {
				return apperrors.NewForbidden("insufficient permissions")
			}
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is an Administrator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !identity.Is(domain.RoleAdministrator) {
			return apperrors.NewForbidden("administrator role required")
		}
		return c.Next()
	}
}
