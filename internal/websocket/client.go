package websocket

import (
	"bytes"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Клиент ленты только читает, входящие сообщения короткие
	maxMessageSize = 512

	// Размер буфера канала отправки сообщений клиенту
	defaultClientBufferSize = 64
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Conn - часть *websocket.Conn, которой пользуется клиент
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// MessageHandler обрабатывает входящее сообщение клиента.
// Возвращенная ошибка закрывает соединение.
type MessageHandler func(message []byte, client *Client) error

// Client является посредником между WebSocket соединением и Hub.
type Client struct {
	// Уникальный ID для каждого соединения
	ConnectionID string

	// Кто подключен: от роли зависит, какие события он получит
	Actor entity.Actor

	hub  *Hub
	conn Conn

	// Буферизованный канал для исходящих сообщений.
	// sendMu не дает записать в уже закрытый канал.
	sendMu     sync.Mutex
	send       chan []byte
	sendClosed bool
}

// NewClient создает нового клиента
func NewClient(hub *Hub, conn Conn, actor entity.Actor) *Client {
	return &Client{
		ConnectionID: uuid.New().String(),
		Actor:        actor,
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, defaultClientBufferSize),
	}
}

// Start регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) Start(handler MessageHandler) {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump(handler)
}

// Enqueue ставит сообщение в очередь без блокировки.
// false означает, что клиент не успевает читать или уже отключен.
func (c *Client) Enqueue(message []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// CloseSend безопасно закрывает канал send (только один раз)
func (c *Client) CloseSend() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	c.sendClosed = true
	close(c.send)
	return true
}

// readPump читает сообщения от клиента и передает их обработчику
func (c *Client) readPump(handler MessageHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		log.Printf("[WSClient] Read pump остановлен: UserID=%d, ConnID=%s", c.Actor.UserID, c.ConnectionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WSClient] Ошибка чтения (UserID=%d, ConnID=%s): %v", c.Actor.UserID, c.ConnectionID, err)
			}
			return
		}
		if err := safeHandleMessage(message, c, handler); err != nil {
			log.Printf("[WSClient] Ошибка обработчика (UserID=%d, ConnID=%s): %v. Закрываем соединение.", c.Actor.UserID, c.ConnectionID, err)
			return
		}
	}
}

// safeHandleMessage вызывает обработчик с recover: паника закрывает только это соединение
func safeHandleMessage(message []byte, client *Client, handler MessageHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WSClient] PANIC в обработчике сообщения (ConnID=%s): %v\n%s", client.ConnectionID, r, string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	if handler == nil {
		return nil
	}
	return handler(message, client)
}

// writePump отправляет сообщения клиенту из канала send и держит ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// Хаб закрыл канал клиента
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WSClient] Ошибка записи (UserID=%d, ConnID=%s): %v", c.Actor.UserID, c.ConnectionID, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
