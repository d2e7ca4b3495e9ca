package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
	"github.com/Amityadav08/SLVNK-Backend/internal/auth"
)

const (
	localIdentity = "identity"
	localIsAdmin  = "is_admin"
)

// Authenticated returns the access-gate middleware. The admin bypass header
// takes precedence over any token; otherwise a valid bearer token is
// required. On success the verified identity (or the admin flag) is attached
// to the request for downstream handlers.
func Authenticated(verify auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := auth.Decide(func(key string) string { return c.Get(key) }, verify)

		switch decision.Kind {
		case auth.DecisionAdmin:
			c.Locals(localIsAdmin, true)
			return c.Next()
		case auth.DecisionUser:
			c.Locals(localIdentity, decision.Identity)
			return c.Next()
		default:
			if decision.Reason == auth.DenyNoCredentials {
				return apperr.ErrAuthRequired
			}
			return apperr.ErrAuthInvalid
		}
	}
}

// AdminOnly guards privileged routes. It checks only the bypass header and
// never consults tokens: a request carrying a perfectly valid user token but
// no header is still rejected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.IsAdminRequest(func(key string) string { return c.Get(key) }) {
			return apperr.ErrForbidden
		}

		c.Locals(localIsAdmin, true)
		return c.Next()
	}
}

// IdentityFrom returns the verified identity attached by Authenticated, if any.
func IdentityFrom(c *fiber.Ctx) (*auth.Identity, bool) {
	identity, ok := c.Locals(localIdentity).(*auth.Identity)
	return identity, ok
}

// IsAdmin reports whether the request was admitted through the admin bypass.
func IsAdmin(c *fiber.Ctx) bool {
	isAdmin, _ := c.Locals(localIsAdmin).(bool)
	return isAdmin
}
