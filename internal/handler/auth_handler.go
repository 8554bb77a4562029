package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	"github.com/yourusername/coffee-audit-api/internal/service"
)

// AuthHandler обрабатывает вход и выдачу WS-тикетов
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		log.Printf("[AuthHandler] Неудачный вход для %s: %v", req.Email, err)
		handleError(c, "AuthHandler", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me возвращает профиль текущего пользователя
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(actor.UserID)
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// WSTicket выдает короткоживущий тикет для подключения к /ws
func (h *AuthHandler) WSTicket(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	ticket, err := h.authService.GenerateWsTicket(actor)
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket":     ticket,
		"expires_in": int(h.authService.JWT().WSTicketExpiry().Seconds()),
	})
}
