package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	websocketManager "classtrack/infrastructure/websocket"
	websocketHandler "classtrack/interfaces/api/websocket"
	"classtrack/interfaces/api/middleware"
	"classtrack/pkg/config"
)

func SetupWebSocketRoutes(app *fiber.App, manager *websocketManager.Manager, cfg *config.Config) {
	wsHandler := websocketHandler.NewWebSocketHandler(manager)

	// Browsers can't set headers on WebSocket connects, so the token may come
	// in as a query parameter.
	app.Use("/ws", middleware.ProtectedWithQueryToken(cfg.JWT.Secret), wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
