package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"classtrack/pkg/logger"
)

// Event is the wire format pushed to dashboard clients.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Manager tracks connected dashboard clients and fans events out to them. A
// slow or dead client is dropped rather than allowed to block the broadcast.
type Manager struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Register adds a connection and starts its writer. The returned channel closes
// when the client is removed.
func (m *Manager) Register(conn *websocket.Conn) {
	send := make(chan []byte, 16)

	m.mu.Lock()
	m.clients[conn] = send
	count := len(m.clients)
	m.mu.Unlock()

	logger.WebSocket("Register", "client connected", map[string]interface{}{
		"clients": count,
	})

	go func() {
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				m.Unregister(conn)
				return
			}
		}
	}()
}

// Unregister removes a connection and closes its writer.
func (m *Manager) Unregister(conn *websocket.Conn) {
	m.mu.Lock()
	send, ok := m.clients[conn]
	if ok {
		delete(m.clients, conn)
	}
	count := len(m.clients)
	m.mu.Unlock()

	if !ok {
		return
	}
	close(send)
	conn.Close()

	logger.WebSocket("Unregister", "client disconnected", map[string]interface{}{
		"clients": count,
	})
}

// Broadcast sends an event to every connected client. Clients whose buffers are
// full miss the event instead of stalling everyone else.
func (m *Manager) Broadcast(eventType string, payload interface{}) {
	msg, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.WebSocketError("Broadcast", "failed to marshal event", err, map[string]interface{}{
			"event_type": eventType,
		})
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, send := range m.clients {
		select {
		case send <- msg:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Shutdown disconnects every client.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn, send := range m.clients {
		close(send)
		conn.Close()
		delete(m.clients, conn)
	}
}
