package routes

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/interfaces/api/handlers"
	"classtrack/interfaces/api/middleware"
	"classtrack/pkg/config"
)

func SetupAttendanceRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	attendance := api.Group("/attendance")
	attendance.Use(middleware.Protected(cfg.JWT.Secret))

	attendance.Get("/me", h.Attendance.MyAttendance)

	// Teacher-only views and overrides
	attendance.Get("/daily", middleware.TeacherOnly(), h.Attendance.Daily)
	attendance.Get("/student/:studentId", middleware.TeacherOnly(), h.Attendance.StudentAttendance)
	attendance.Put("/override", middleware.TeacherOnly(), h.Attendance.Override)
}
