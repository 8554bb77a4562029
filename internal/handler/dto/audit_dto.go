package dto

import (
	"time"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/pkg/optional"
)

// AnswerRequest - ответ на один вопрос в запросе создания/обновления аудита
type AnswerRequest struct {
	QuestionID uint    `json:"question_id" binding:"required"`
	Choice     *string `json:"choice"`
	Comment    *string `json:"comment"`
	PhotoData  *string `json:"photo_data"` // base64 data-URI
	// PhotoURL позволяет сохранить уже загруженное фото ответа при замене набора ответов
	PhotoURL *string `json:"photo_url"`
}

// CreateAuditRequest - тело POST /api/audits
type CreateAuditRequest struct {
	CoffeeID          uint            `json:"coffee_id" binding:"required"`
	Shift             *string         `json:"shift"`
	StaffPresent      *string         `json:"staff_present"`
	CorrectiveActions *string         `json:"corrective_actions"`
	TrainingNeeds     *string         `json:"training_needs"`
	Purchases         *string         `json:"purchases"`
	PhotoData         *string         `json:"photo_data"`
	Answers           []AnswerRequest `json:"answers" binding:"dive"`
}

// UpdateAuditRequest - тело PUT /api/audits/:id.
// Каждое поле различает "не передано", "передано как null" и "передано значение".
// Answers: не передано - ответы и оценка не меняются; передано - полная замена набора.
type UpdateAuditRequest struct {
	CoffeeID          optional.Field[uint]            `json:"coffee_id"`
	Shift             optional.Field[string]          `json:"shift"`
	StaffPresent      optional.Field[string]          `json:"staff_present"`
	CorrectiveActions optional.Field[string]          `json:"corrective_actions"`
	TrainingNeeds     optional.Field[string]          `json:"training_needs"`
	Purchases         optional.Field[string]          `json:"purchases"`
	PhotoData         optional.Field[string]          `json:"photo_data"`
	Answers           optional.Field[[]AnswerRequest] `json:"answers"`
}

// AuditListResponse - страница аудитов
type AuditListResponse struct {
	Audits  []entity.Audit `json:"audits"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// AuditExportRow - строка выгрузки аудитов в CSV/XLSX
type AuditExportRow struct {
	ID                uint
	CreatedAt         time.Time
	CoffeeName        string
	AuditorName       string
	Score             float64
	Shift             string
	StaffPresent      string
	CorrectiveActions string
	TrainingNeeds     string
	Purchases         string
}

// NewAuditExportRow собирает строку выгрузки из аудита с подгруженными Coffee/Auditor
func NewAuditExportRow(a *entity.Audit) AuditExportRow {
	row := AuditExportRow{
		ID:                a.ID,
		CreatedAt:         a.CreatedAt,
		Score:             a.Score,
		Shift:             deref(a.Shift),
		StaffPresent:      deref(a.StaffPresent),
		CorrectiveActions: deref(a.CorrectiveActions),
		TrainingNeeds:     deref(a.TrainingNeeds),
		Purchases:         deref(a.Purchases),
	}
	if a.Coffee != nil {
		row.CoffeeName = a.Coffee.Name
	}
	if a.Auditor != nil {
		row.AuditorName = a.Auditor.FullName
		if row.AuditorName == "" {
			row.AuditorName = a.Auditor.Email
		}
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
