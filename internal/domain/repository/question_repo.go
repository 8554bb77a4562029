package repository

import (
	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами каталога
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	// GetByIDs возвращает найденные вопросы; отсутствующие id просто пропускаются
	GetByIDs(ids []uint) ([]entity.Question, error)
	// List возвращает вопросы, при categoryID != nil только одного раздела
	List(categoryID *uint) ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error
	Count() (int64, error)
}
