package websocket

import (
	"log"
	"sync"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// Hub хранит подключенных клиентов текущего экземпляра
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub создает пустой хаб
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register добавляет клиента
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	log.Printf("[WSHub] Клиент подключен: UserID=%d, Role=%s, ConnID=%s, всего=%d", c.Actor.UserID, c.Actor.Role, c.ConnectionID, total)
}

// Unregister удаляет клиента и закрывает его канал отправки. Повторный вызов безопасен.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.CloseSend()
		log.Printf("[WSHub] Клиент отключен: UserID=%d, ConnID=%s", c.Actor.UserID, c.ConnectionID)
	}
}

// Deliver отправляет сообщение всем клиентам, для которых allow вернул true.
// Клиенты с переполненным буфером отключаются. Возвращает число получателей.
func (h *Hub) Deliver(message []byte, allow func(entity.Actor) bool) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if allow == nil || allow(c.Actor) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.Enqueue(message) {
			delivered++
			continue
		}
		log.Printf("[WSHub] Буфер клиента переполнен, отключаем: UserID=%d, ConnID=%s", c.Actor.UserID, c.ConnectionID)
		h.Unregister(c)
	}
	return delivered
}

// Send отправляет сообщение одному клиенту
func (h *Hub) Send(c *Client, message []byte) bool {
	return c.Enqueue(message)
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close отключает всех клиентов (при остановке сервера)
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.CloseSend()
	}
}
