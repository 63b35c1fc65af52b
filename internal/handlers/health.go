package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/config"
	"github.com/localnerve/equirecords/internal/services"
)

// HealthHandler reports dependency health
type HealthHandler struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  cache.Cache
}

// Health handles GET /api/health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Cache)
	status := fiber.StatusOK
	if !result.Healthy() {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
