package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Amityadav08/SLVNK-Backend/internal/admin"
	"github.com/Amityadav08/SLVNK-Backend/internal/middleware"
)

// RegisterAdminRoutes wires the privileged management surface. The whole
// group sits behind the header-only admin gate; bearer tokens are never
// consulted here.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	group := r.Group("/admin/users", middleware.AdminOnly())

	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
