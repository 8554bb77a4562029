package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	"github.com/yourusername/coffee-audit-api/internal/handler/helper"
	"github.com/yourusername/coffee-audit-api/internal/service"
)

// CoffeeHandler обрабатывает запросы по кофейням
type CoffeeHandler struct {
	coffeeService *service.CoffeeService
}

// NewCoffeeHandler создает новый обработчик кофеен
func NewCoffeeHandler(coffeeService *service.CoffeeService) *CoffeeHandler {
	return &CoffeeHandler{coffeeService: coffeeService}
}

// ListCoffees обрабатывает GET /api/coffees
func (h *CoffeeHandler) ListCoffees(c *gin.Context) {
	page, pageSize := helper.ParsePagination(c, 100)

	coffees, err := h.coffeeService.ListCoffees(page, pageSize)
	if err != nil {
		handleError(c, "CoffeeHandler", err)
		return
	}
	c.JSON(http.StatusOK, coffees)
}

// GetCoffee обрабатывает GET /api/coffees/:id
func (h *CoffeeHandler) GetCoffee(c *gin.Context) {
	id := c.MustGet("coffeeID").(uint)

	coffee, err := h.coffeeService.GetCoffee(id)
	if err != nil {
		handleError(c, "CoffeeHandler", err)
		return
	}
	c.JSON(http.StatusOK, coffee)
}

// CreateCoffee обрабатывает POST /api/coffees
func (h *CoffeeHandler) CreateCoffee(c *gin.Context) {
	var req dto.CreateCoffeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	coffee, err := h.coffeeService.CreateCoffee(req)
	if err != nil {
		handleError(c, "CoffeeHandler", err)
		return
	}
	c.JSON(http.StatusCreated, coffee)
}

// UpdateCoffee обрабатывает PUT /api/coffees/:id
func (h *CoffeeHandler) UpdateCoffee(c *gin.Context) {
	id := c.MustGet("coffeeID").(uint)

	var req dto.UpdateCoffeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	coffee, err := h.coffeeService.UpdateCoffee(id, req)
	if err != nil {
		handleError(c, "CoffeeHandler", err)
		return
	}
	c.JSON(http.StatusOK, coffee)
}

// DeleteCoffee обрабатывает DELETE /api/coffees/:id
func (h *CoffeeHandler) DeleteCoffee(c *gin.Context) {
	id := c.MustGet("coffeeID").(uint)

	if err := h.coffeeService.DeleteCoffee(id); err != nil {
		handleError(c, "CoffeeHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
