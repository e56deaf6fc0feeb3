package routes

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/interfaces/api/handlers"
	"classtrack/interfaces/api/middleware"
	"classtrack/pkg/config"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	auth := api.Group("/auth")
	auth.Use(middleware.AuthRateLimiter(&cfg.RateLimit))

	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)

	// Google OAuth
	auth.Get("/google", h.Auth.GoogleLogin)
	auth.Get("/google/callback", h.Auth.GoogleCallback)

	auth.Get("/me", middleware.Protected(cfg.JWT.Secret), h.Auth.Me)
}
