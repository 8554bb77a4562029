package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	"github.com/yourusername/coffee-audit-api/internal/handler/helper"
	"github.com/yourusername/coffee-audit-api/internal/service"
)

// UserHandler обрабатывает администрирование пользователей
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers обрабатывает GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := helper.ParsePagination(c, 20)

	users, err := h.userService.ListUsers(page, pageSize)
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser обрабатывает GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.MustGet("userID").(uint)

	user, err := h.userService.GetUser(id)
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser обрабатывает POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.CreateUser(req)
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser обрабатывает PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.MustGet("userID").(uint)

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.UpdateUser(id, req)
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser обрабатывает DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.MustGet("userID").(uint)

	if err := h.userService.DeleteUser(actor, id); err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
