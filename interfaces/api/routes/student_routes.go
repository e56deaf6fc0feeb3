package routes

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/interfaces/api/handlers"
	"classtrack/interfaces/api/middleware"
	"classtrack/pkg/config"
)

func SetupStudentRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	students := api.Group("/students")
	students.Use(middleware.Protected(cfg.JWT.Secret))

	students.Get("/", h.Student.List)

	// Enrollment is teacher-only
	students.Post("/bulk-upload", middleware.TeacherOnly(), h.Student.BulkUpload)
	students.Post("/:studentId/photos", middleware.TeacherOnly(), h.Student.EnrollPhoto)
}
