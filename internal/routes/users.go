package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Amityadav08/SLVNK-Backend/internal/user"
)

// RegisterUserRoutes wires the public and token-gated member endpoints. The
// listing endpoint is deliberately public; everything identity-bearing sits
// behind the access gate.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, gate fiber.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/users")

	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Get("/", h.List)

	group.Get("/search", gate, h.Search)
	group.Get("/:id", gate, h.Get)
	group.Put("/:id", gate, h.Update)
}
