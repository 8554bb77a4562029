package entity

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// Question представляет взвешенный вопрос чек-листа
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Text          string    `gorm:"size:500;not null" json:"text"`
	Weight        int       `gorm:"not null" json:"weight"`
	CorrectAnswer Choice    `gorm:"size:10;not null" json:"correct_answer"`
	NAScore       int       `gorm:"column:na_score;not null" json:"na_score"`
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "audit_questions"
}

// ExpectedChoice возвращает нормализованный правильный ответ, "oui" если не задан.
// Правильный ответ задает администратор, поэтому пробелы по краям здесь обрезаются.
func (q *Question) ExpectedChoice() Choice {
	raw := strings.TrimSpace(string(q.CorrectAnswer))
	if raw == "" {
		return ChoiceYes
	}
	return ParseChoice(raw)
}

// MaxAward - верхняя граница очков, которые может получить ответ на вопрос
func (q *Question) MaxAward() int {
	if q.NAScore > q.Weight {
		return q.NAScore
	}
	return q.Weight
}

// Normalize приводит CorrectAnswer к каноничной форме перед сохранением
func (q *Question) Normalize() {
	q.Text = strings.TrimSpace(q.Text)
	q.CorrectAnswer = q.ExpectedChoice()
}

// Validate проверяет инварианты вопроса
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if q.Weight < 0 {
		return fmt.Errorf("%w: weight must be >= 0", apperrors.ErrValidation)
	}
	if q.NAScore < 0 {
		return fmt.Errorf("%w: na_score must be >= 0", apperrors.ErrValidation)
	}
	if !q.ExpectedChoice().Valid() {
		return fmt.Errorf("%w: correct_answer must be one of oui, non, n/a", apperrors.ErrValidation)
	}
	if q.CategoryID == 0 {
		return fmt.Errorf("%w: category_id is required", apperrors.ErrValidation)
	}
	return nil
}
