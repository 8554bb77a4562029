package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий разделов
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create создает новый раздел
func (r *CategoryRepo) Create(category *entity.Category) error {
	return mapWriteError(r.db.Create(category).Error, "category")
}

// GetByID возвращает раздел без вопросов
func (r *CategoryRepo) GetByID(id uint) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &category, nil
}

// GetByIDWithQuestions возвращает раздел с вопросами и пересчитанным TotalScore
func (r *CategoryRepo) GetByIDWithQuestions(id uint) (*entity.Category, error) {
	var category entity.Category
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("audit_questions.id")
	}).First(&category, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	category.ComputeTotalScore()
	return &category, nil
}

// List возвращает все разделы с вопросами
func (r *CategoryRepo) List() ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("audit_questions.id")
	}).Order("id").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].ComputeTotalScore()
	}
	return categories, nil
}

// Update сохраняет имя и описание раздела
func (r *CategoryRepo) Update(category *entity.Category) error {
	result := r.db.Model(&entity.Category{}).Where("id = ?", category.ID).Updates(map[string]interface{}{
		"name":        category.Name,
		"description": category.Description,
	})
	if result.Error != nil {
		return mapWriteError(result.Error, "category")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет раздел
func (r *CategoryRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Category{}, id)
	if result.Error != nil {
		return mapWriteError(result.Error, "category")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountQuestions возвращает количество вопросов в разделе
func (r *CategoryRepo) CountQuestions(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
