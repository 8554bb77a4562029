package repository

import (
	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// CoffeeRepository определяет методы для работы с кофейнями
type CoffeeRepository interface {
	Create(coffee *entity.Coffee) error
	GetByID(id uint) (*entity.Coffee, error)
	List(limit, offset int) ([]entity.Coffee, error)
	// ListByIDs нужен для подстановки названий кофеен в отчетах
	ListByIDs(ids []uint) ([]entity.Coffee, error)
	Update(coffee *entity.Coffee) error
	Delete(id uint) error
	Count() (int64, error)
}
