package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	"github.com/yourusername/coffee-audit-api/internal/handler/helper"
	"github.com/yourusername/coffee-audit-api/internal/service"
)

// CatalogHandler обрабатывает разделы и вопросы чек-листа
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCategories обрабатывает GET /api/categories (с вопросами и total_score)
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory обрабатывает GET /api/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id := c.MustGet("categoryID").(uint)

	category, err := h.catalogService.GetCategory(id)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory обрабатывает POST /api/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.catalogService.CreateCategory(req)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory обрабатывает PUT /api/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id := c.MustGet("categoryID").(uint)

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.catalogService.UpdateCategory(id, req)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /api/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id := c.MustGet("categoryID").(uint)

	if err := h.catalogService.DeleteCategory(id); err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListQuestions обрабатывает GET /api/questions?category_id=
func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	categoryID, err := helper.OptionalUintQuery(c, "category_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions, err := h.catalogService.ListQuestions(categoryID)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion обрабатывает GET /api/questions/:id
func (h *CatalogHandler) GetQuestion(c *gin.Context) {
	id := c.MustGet("questionID").(uint)

	question, err := h.catalogService.GetQuestion(id)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// CreateQuestion обрабатывает POST /api/questions
func (h *CatalogHandler) CreateQuestion(c *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	question, err := h.catalogService.CreateQuestion(req)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion обрабатывает PUT /api/questions/:id
func (h *CatalogHandler) UpdateQuestion(c *gin.Context) {
	id := c.MustGet("questionID").(uint)

	var req dto.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	question, err := h.catalogService.UpdateQuestion(id, req)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion обрабатывает DELETE /api/questions/:id
func (h *CatalogHandler) DeleteQuestion(c *gin.Context) {
	id := c.MustGet("questionID").(uint)

	if err := h.catalogService.DeleteQuestion(id); err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
