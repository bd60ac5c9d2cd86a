package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/database"
	"github.com/studyhall-app/studyhall-api/utils/response"
)

// HealthHandler reports liveness for uptime checks
type HealthHandler struct {
	store database.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Storage) *HealthHandler {
	return &HealthHandler{store: store}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	if err := h.store.HealthCheck(); err != nil {
		return response.InternalServerError(c, "Database unreachable")
	}
	return response.Success(c, fiber.Map{"status": "ok"})
}
