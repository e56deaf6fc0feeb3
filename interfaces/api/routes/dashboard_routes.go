package routes

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/interfaces/api/handlers"
	"classtrack/interfaces/api/middleware"
	"classtrack/pkg/config"
)

func SetupDashboardRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	dashboard := api.Group("/dashboard")
	dashboard.Use(middleware.Protected(cfg.JWT.Secret))

	dashboard.Get("/student", h.Dashboard.Student)
	dashboard.Get("/teacher", middleware.TeacherOnly(), h.Dashboard.Teacher)
}
