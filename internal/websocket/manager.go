package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// publishTimeout ограничивает публикацию события в Redis, чтобы не задерживать запрос
const publishTimeout = 2 * time.Second

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// clusterEnvelope - событие аудита, пересылаемое между экземплярами
type clusterEnvelope struct {
	InstanceID string            `json:"instance_id"`
	Event      entity.AuditEvent `json:"event"`
}

// Manager рассылает события аудитов подключенным клиентам с учетом их роли
// и обрабатывает входящие служебные сообщения.
type Manager struct {
	hub        *Hub
	pubsub     PubSubProvider
	channel    string
	instanceID string
}

// NewManager создает менеджер. pubsub == nil означает одиночный режим.
func NewManager(hub *Hub, pubsub PubSubProvider, channel string) *Manager {
	if pubsub == nil {
		pubsub = NoOpPubSub{}
	}
	return &Manager{
		hub:        hub,
		pubsub:     pubsub,
		channel:    channel,
		instanceID: uuid.New().String(),
	}
}

// Hub возвращает хаб менеджера
func (m *Manager) Hub() *Hub {
	return m.hub
}

// OnAuditChanged доставляет событие локальным клиентам и публикует его для остальных экземпляров
func (m *Manager) OnAuditChanged(event entity.AuditEvent) {
	m.deliver(event)

	payload, err := json.Marshal(clusterEnvelope{InstanceID: m.instanceID, Event: event})
	if err != nil {
		log.Printf("[WebSocketManager] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := m.pubsub.Publish(ctx, m.channel, payload); err != nil {
		log.Printf("[WebSocketManager] Не удалось опубликовать событие %s аудита %d: %v", event.Type, event.AuditID, err)
	}
}

// Run слушает события других экземпляров до отмены ctx
func (m *Manager) Run(ctx context.Context) error {
	msgs, err := m.pubsub.Subscribe(ctx, m.channel)
	if err != nil {
		return err
	}
	for payload := range msgs {
		m.handleClusterMessage(payload)
	}
	return nil
}

func (m *Manager) handleClusterMessage(payload []byte) {
	var env clusterEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Printf("[WebSocketManager] Некорректное сообщение кластера: %v", err)
		return
	}
	// Свои события уже доставлены в OnAuditChanged
	if env.InstanceID == m.instanceID {
		return
	}
	m.deliver(env.Event)
}

// deliver отправляет событие только тем, кто может видеть этот аудит
func (m *Manager) deliver(event entity.AuditEvent) {
	message, err := json.Marshal(Event{Type: string(event.Type), Data: event})
	if err != nil {
		log.Printf("[WebSocketManager] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}
	audit := &entity.Audit{CoffeeID: event.CoffeeID, AuditorID: event.AuditorID}
	m.hub.Deliver(message, func(actor entity.Actor) bool {
		return actor.CanViewAudit(audit)
	})
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &event); err != nil {
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	switch event.Type {
	case CLIENT_HEARTBEAT:
		m.sendEvent(client, SERVER_HEARTBEAT, map[string]interface{}{
			"timestamp": time.Now().UnixMilli(),
		})
	default:
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
	}
	return nil
}

// SendErrorToClient отправляет стандартизированное сообщение об ошибке клиенту.
// Этот метод НЕ закрывает соединение.
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	m.sendEvent(client, SERVER_ERROR, map[string]string{
		"code":    code,
		"message": message,
	})
}

func (m *Manager) sendEvent(client *Client, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("[WebSocketManager] Ошибка сериализации %s: %v", eventType, err)
		return
	}
	if !m.hub.Send(client, payload) {
		log.Printf("[WebSocketManager] Не удалось отправить %s клиенту ConnID=%s", eventType, client.ConnectionID)
	}
}
