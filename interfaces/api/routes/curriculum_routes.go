package routes

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/interfaces/api/handlers"
	"classtrack/interfaces/api/middleware"
	"classtrack/pkg/config"
)

func SetupCurriculumRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	curriculum := api.Group("/curriculum")
	curriculum.Use(middleware.Protected(cfg.JWT.Secret))

	curriculum.Get("/", h.Curriculum.List)
	curriculum.Post("/", middleware.TeacherOnly(), h.Curriculum.Create)
	curriculum.Put("/:id", middleware.TeacherOnly(), h.Curriculum.Update)
}
