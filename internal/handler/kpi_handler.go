package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/coffee-audit-api/internal/service"
)

// KPIHandler отдает агрегированные показатели
type KPIHandler struct {
	kpiService *service.KPIService
}

// NewKPIHandler создает новый обработчик показателей
func NewKPIHandler(kpiService *service.KPIService) *KPIHandler {
	return &KPIHandler{kpiService: kpiService}
}

// GetKPI обрабатывает GET /api/kpi
func (h *KPIHandler) GetKPI(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	kpi, err := h.kpiService.GetKPI(c.Request.Context(), actor)
	if err != nil {
		handleError(c, "KPIHandler", err)
		return
	}
	c.JSON(http.StatusOK, kpi)
}
