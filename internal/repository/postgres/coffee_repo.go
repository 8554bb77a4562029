package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// CoffeeRepo реализует repository.CoffeeRepository
type CoffeeRepo struct {
	db *gorm.DB
}

// NewCoffeeRepo создает новый репозиторий кофеен
func NewCoffeeRepo(db *gorm.DB) *CoffeeRepo {
	return &CoffeeRepo{db: db}
}

// Create создает новую кофейню
func (r *CoffeeRepo) Create(coffee *entity.Coffee) error {
	return mapWriteError(r.db.Create(coffee).Error, "coffee")
}

// GetByID возвращает кофейню по ID
func (r *CoffeeRepo) GetByID(id uint) (*entity.Coffee, error) {
	var coffee entity.Coffee
	if err := r.db.First(&coffee, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &coffee, nil
}

// List возвращает список кофеен с пагинацией
func (r *CoffeeRepo) List(limit, offset int) ([]entity.Coffee, error) {
	var coffees []entity.Coffee
	err := r.db.Order("id").Limit(limit).Offset(offset).Find(&coffees).Error
	return coffees, err
}

// ListByIDs возвращает кофейни по списку ID
func (r *CoffeeRepo) ListByIDs(ids []uint) ([]entity.Coffee, error) {
	var coffees []entity.Coffee
	if len(ids) == 0 {
		return coffees, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&coffees).Error
	return coffees, err
}

// Update сохраняет все поля кофейни
func (r *CoffeeRepo) Update(coffee *entity.Coffee) error {
	result := r.db.Model(&entity.Coffee{}).Where("id = ?", coffee.ID).Updates(map[string]interface{}{
		"name":     coffee.Name,
		"location": coffee.Location,
		"active":   coffee.Active,
	})
	if result.Error != nil {
		return mapWriteError(result.Error, "coffee")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет кофейню. Кофейню с аудитами удалить нельзя (FK).
func (r *CoffeeRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Coffee{}, id)
	if result.Error != nil {
		return mapWriteError(result.Error, "coffee")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Count возвращает количество кофеен
func (r *CoffeeRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Coffee{}).Count(&count).Error
	return count, err
}
