package entity

import "time"

// AuditEventType - тип изменения аудита, рассылаемый наблюдателям после коммита
type AuditEventType string

const (
	AuditCreated AuditEventType = "audit.created"
	AuditUpdated AuditEventType = "audit.updated"
	AuditDeleted AuditEventType = "audit.deleted"
)

// AuditEvent - уведомление о зафиксированном изменении аудита
type AuditEvent struct {
	Type       AuditEventType `json:"type"`
	AuditID    uint           `json:"audit_id"`
	CoffeeID   uint           `json:"coffee_id"`
	AuditorID  uint           `json:"auditor_id"`
	Score      float64        `json:"score"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewAuditEvent собирает событие по состоянию аудита
func NewAuditEvent(t AuditEventType, a *Audit) AuditEvent {
	return AuditEvent{
		Type:       t,
		AuditID:    a.ID,
		CoffeeID:   a.CoffeeID,
		AuditorID:  a.AuditorID,
		Score:      a.Score,
		OccurredAt: time.Now(),
	}
}
