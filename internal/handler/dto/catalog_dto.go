package dto

import "github.com/yourusername/coffee-audit-api/internal/pkg/optional"

// CategoryRequest - тело создания/обновления раздела
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Description *string `json:"description"`
}

// CreateQuestionRequest - тело POST /api/questions
type CreateQuestionRequest struct {
	Text          string `json:"text" binding:"required,max=500"`
	Weight        *int   `json:"weight"`         // по умолчанию 1
	CorrectAnswer string `json:"correct_answer"` // по умолчанию "oui"
	NAScore       int    `json:"na_score"`
	CategoryID    uint   `json:"category_id" binding:"required"`
}

// UpdateQuestionRequest - частичное обновление вопроса
type UpdateQuestionRequest struct {
	Text          optional.Field[string] `json:"text"`
	Weight        optional.Field[int]    `json:"weight"`
	CorrectAnswer optional.Field[string] `json:"correct_answer"`
	NAScore       optional.Field[int]    `json:"na_score"`
	CategoryID    optional.Field[uint]   `json:"category_id"`
}
