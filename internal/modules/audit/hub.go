package audit

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans events out to connected websocket subscribers.
type Hub struct {
	connections map[string]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
	}
}

func (h *Hub) Register(id string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[id]; exists && oldConn != nil {
		_ = oldConn.Close()
	}
	h.connections[id] = conn
}

func (h *Hub) Unregister(id string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[id]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, id)
	}
}

// Broadcast writes ev to every subscriber and drops the ones that fail.
func (h *Hub) Broadcast(ev Event) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	delivered := 0
	for id, conn := range h.connections {
		if err := conn.WriteJSON(ev); err != nil {
			_ = conn.Close()
			delete(h.connections, id)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, id)
	}
}
