package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	websocketManager "classtrack/infrastructure/websocket"
	"classtrack/pkg/logger"
	"classtrack/pkg/utils"
)

type WebSocketHandler struct {
	manager *websocketManager.Manager
}

func NewWebSocketHandler(manager *websocketManager.Manager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket keeps the connection registered until the client goes away.
// Inbound messages are ignored; the socket is a one-way event feed.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	if userContext := c.Locals("user"); userContext != nil {
		if user, ok := userContext.(*utils.UserContext); ok {
			logger.WebSocket("connected", "dashboard client connected", map[string]interface{}{
				"user_id": user.ID.String(),
			})
		}
	}

	h.manager.Register(c)
	defer h.manager.Unregister(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
