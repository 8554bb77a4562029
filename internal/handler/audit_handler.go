package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	"github.com/yourusername/coffee-audit-api/internal/handler/helper"
	"github.com/yourusername/coffee-audit-api/internal/service"
)

var auditExportHeaders = []string{"ID", "Date", "Café", "Auditeur", "Score (%)", "Shift", "Personnel présent", "Actions correctives", "Besoins en formation", "Achats"}

// AuditHandler обрабатывает запросы, связанные с аудитами
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler создает новый обработчик аудитов
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAudits обрабатывает GET /api/audits
func (h *AuditHandler) ListAudits(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, pageSize := helper.ParsePagination(c, 20)

	audits, total, err := h.auditService.ListAudits(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		handleError(c, "AuditHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.AuditListResponse{Audits: audits, Total: total, Page: page, PerPage: pageSize})
}

// GetAudit обрабатывает GET /api/audits/:id
func (h *AuditHandler) GetAudit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.MustGet("auditID").(uint)

	audit, err := h.auditService.GetAudit(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, "AuditHandler", err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

// CreateAudit обрабатывает POST /api/audits
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	audit, err := h.auditService.CreateAudit(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, "AuditHandler", err)
		return
	}
	c.JSON(http.StatusCreated, audit)
}

// UpdateAudit обрабатывает PUT /api/audits/:id (частичное обновление)
func (h *AuditHandler) UpdateAudit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.MustGet("auditID").(uint)

	var req dto.UpdateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	audit, err := h.auditService.UpdateAudit(c.Request.Context(), actor, id, req)
	if err != nil {
		handleError(c, "AuditHandler", err)
		return
	}
	c.JSON(http.StatusOK, audit)
}

// DeleteAudit обрабатывает DELETE /api/audits/:id
func (h *AuditHandler) DeleteAudit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.MustGet("auditID").(uint)

	if err := h.auditService.DeleteAudit(c.Request.Context(), actor, id); err != nil {
		handleError(c, "AuditHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportAudits выгружает видимые аудиты в CSV или Excel
// GET /api/audits/export?format=csv|xlsx
func (h *AuditHandler) ExportAudits(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	audits, err := h.auditService.ListAllVisible(c.Request.Context(), actor)
	if err != nil {
		handleError(c, "AuditHandler", err)
		return
	}
	rows := make([]dto.AuditExportRow, len(audits))
	for i := range audits {
		rows[i] = dto.NewAuditExportRow(&audits[i])
	}

	filename := fmt.Sprintf("audits_%s", time.Now().Format("2006-01-02"))
	switch format {
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
		if err := writeAuditsXLSX(c.Writer, rows); err != nil {
			log.Printf("[AuditHandler] Ошибка записи Excel в response: %v", err)
		}
	default:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
		if err := writeAuditsCSV(c.Writer, rows); err != nil {
			log.Printf("[AuditHandler] Ошибка записи CSV в response: %v", err)
		}
	}
}

func exportRecord(r dto.AuditExportRow) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.CreatedAt.Format("2006-01-02 15:04"),
		service.SanitizeForExcel(r.CoffeeName),
		service.SanitizeForExcel(r.AuditorName),
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		service.SanitizeForExcel(r.Shift),
		service.SanitizeForExcel(r.StaffPresent),
		service.SanitizeForExcel(r.CorrectiveActions),
		service.SanitizeForExcel(r.TrainingNeeds),
		service.SanitizeForExcel(r.Purchases),
	}
}

// writeAuditsCSV пишет CSV с BOM, чтобы Excel корректно показывал UTF-8
func writeAuditsCSV(w io.Writer, rows []dto.AuditExportRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(auditExportHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(exportRecord(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeAuditsXLSX пишет книгу через StreamWriter: память не растет с числом строк
func writeAuditsXLSX(w io.Writer, rows []dto.AuditExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Audits"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	headers := make([]interface{}, len(auditExportHeaders))
	for i, h := range auditExportHeaders {
		headers[i] = h
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		record := exportRecord(r)
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		row[0] = r.ID
		row[4] = r.Score
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Write(w)
}
