package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/coffee-audit-api/internal/middleware"
	"github.com/yourusername/coffee-audit-api/internal/websocket"
	"github.com/yourusername/coffee-audit-api/pkg/auth"
)

// WSHandler обрабатывает подключения к ленте аудитов
type WSHandler struct {
	wsManager  *websocket.Manager
	jwtService *auth.JWTService
	resolver   middleware.ActorResolver
	upgrader   gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket.
// allowedOrigins синхронизирован с CORS: пустой Origin (не браузер) разрешен всегда.
func NewWSHandler(wsManager *websocket.Manager, jwtService *auth.JWTService, resolver middleware.ActorResolver, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &WSHandler{
		wsManager:  wsManager,
		jwtService: jwtService,
		resolver:   resolver,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed["*"]; ok {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				log.Printf("[WSHandler] Отклонен origin: %s", origin)
				return false
			},
		},
	}
}

// HandleConnection обрабатывает GET /ws?ticket=...
func (h *WSHandler) HandleConnection(c *gin.Context) {
	// НЕ логируем тикет - это секретные данные аутентификации
	ticket := c.Query("ticket")
	if ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication ticket parameter"})
		return
	}

	claims, err := h.jwtService.ParseWSTicket(ticket)
	if err != nil {
		log.Printf("[WSHandler] Недействительный тикет: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired ticket"})
		return
	}

	actor, err := h.resolver.ResolveActor(claims)
	if err != nil {
		handleError(c, "WSHandler", err)
		return
	}

	// Upgrade сам пишет ответ об ошибке
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка upgrade для UserID=%d: %v", actor.UserID, err)
		return
	}

	client := websocket.NewClient(h.wsManager.Hub(), conn, actor)
	client.Start(h.wsManager.HandleMessage)
}
