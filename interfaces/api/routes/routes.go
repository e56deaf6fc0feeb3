package routes

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/infrastructure/websocket"
	"classtrack/interfaces/api/handlers"
	"classtrack/pkg/config"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, wsManager *websocket.Manager, cfg *config.Config) {
	SetupHealthRoutes(app, h)

	api := app.Group("/api/v1")

	SetupAuthRoutes(api, h, cfg)
	SetupStudentRoutes(api, h, cfg)
	SetupAttendanceRoutes(api, h, cfg)
	SetupStreamRoutes(api, h, cfg)
	SetupCurriculumRoutes(api, h, cfg)
	SetupDashboardRoutes(api, h, cfg)

	// WebSocket routes attach to the app, not the api group
	SetupWebSocketRoutes(app, wsManager, cfg)
}
