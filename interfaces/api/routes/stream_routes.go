package routes

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/interfaces/api/handlers"
	"classtrack/interfaces/api/middleware"
	"classtrack/pkg/config"
)

func SetupStreamRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	stream := api.Group("/stream")
	stream.Use(middleware.Protected(cfg.JWT.Secret), middleware.TeacherOnly())

	stream.Get("/config", h.Stream.GetConfig)
	stream.Put("/config", h.Stream.ApplyConfig)
	stream.Get("/status", h.Stream.Status)
	stream.Post("/restart", h.Stream.Restart)
}
