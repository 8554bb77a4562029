package entity

import "time"

// Audit - один визит аудитора в кофейню с итоговым процентом соответствия.
// Score всегда пересчитывается из текущего набора Answers и не редактируется напрямую.
type Audit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CoffeeID  uint    `gorm:"not null;index" json:"coffee_id"`
	Coffee    *Coffee `gorm:"foreignKey:CoffeeID" json:"coffee,omitempty"`
	AuditorID uint    `gorm:"not null;index" json:"auditor_id"`
	Auditor   *User   `gorm:"foreignKey:AuditorID" json:"auditor,omitempty"`

	Shift             *string `gorm:"type:text" json:"shift"`
	StaffPresent      *string `gorm:"type:text" json:"staff_present"`
	CorrectiveActions *string `gorm:"column:corrective_actions;type:text" json:"corrective_actions"`
	TrainingNeeds     *string `gorm:"type:text" json:"training_needs"`
	Purchases         *string `gorm:"type:text" json:"purchases"`
	PhotoURL          *string `gorm:"size:255" json:"photo_url"`

	Score float64 `gorm:"not null;default:0" json:"score"`

	Answers []AuditAnswer `gorm:"foreignKey:AuditID;constraint:OnDelete:CASCADE" json:"answers"`
}

// TableName определяет имя таблицы для GORM
func (Audit) TableName() string {
	return "audits"
}

// AuditAnswer - ответ на один вопрос внутри аудита.
// QuestionID намеренно без внешнего ключа: ответ на удаленный вопрос остается в истории.
type AuditAnswer struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	AuditID    uint    `gorm:"not null;index" json:"audit_id"`
	QuestionID uint    `gorm:"not null;index" json:"question_id"`
	Choice     *string `gorm:"type:text" json:"choice"` // как прислал клиент, без нормализации
	Value      int     `gorm:"not null;default:0" json:"value"`
	Comment    *string `gorm:"type:text" json:"comment"`
	PhotoURL   *string `gorm:"size:255" json:"photo_url"`

	Question *Question `gorm:"-" json:"question,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (AuditAnswer) TableName() string {
	return "audit_answers"
}

// NormalizedChoice возвращает нормализованный выбор, ChoiceUnknown если ответ не указан
func (a *AuditAnswer) NormalizedChoice() Choice {
	if a.Choice == nil {
		return ChoiceUnknown
	}
	return ParseChoice(*a.Choice)
}
