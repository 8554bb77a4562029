package repository

import (
	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// CategoryRepository определяет методы для работы с разделами чек-листа
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	// GetByIDWithQuestions загружает раздел вместе с вопросами и пересчитывает TotalScore
	GetByIDWithQuestions(id uint) (*entity.Category, error)
	// List возвращает все разделы с вопросами и пересчитанным TotalScore
	List() ([]entity.Category, error)
	Update(category *entity.Category) error
	Delete(id uint) error
	CountQuestions(categoryID uint) (int64, error)
}
