package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classtrack/domain/services"
	"classtrack/pkg/utils"
)

type HealthHandler struct {
	db       *gorm.DB
	embedder services.Embedder
	started  time.Time
}

func NewHealthHandler(db *gorm.DB, embedder services.Embedder) *HealthHandler {
	return &HealthHandler{
		db:       db,
		embedder: embedder,
		started:  time.Now(),
	}
}

// Health is the liveness probe
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

// Ready is the readiness probe: database reachable, face service optional but
// reported.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Context())
	}
	if err != nil {
		checks["database"] = "unreachable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.embedder != nil && h.embedder.IsAvailable(c.Context()) {
		checks["face_api"] = "ok"
	} else {
		checks["face_api"] = "unreachable"
	}

	if !healthy {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Not ready", nil)
	}

	return utils.SuccessResponse(c, "Ready", checks)
}
