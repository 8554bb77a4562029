package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return mapWriteError(r.db.Create(question).Error, "question")
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции (французские тексты вопросов)
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return mapWriteError(tx.Create(&questions).Error, "question")
	})
}

// GetByID возвращает вопрос по ID вместе с разделом
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.Preload("Category").First(&question, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &question, nil
}

// GetByIDs возвращает вопросы по списку ID, отсутствующие пропускаются
func (r *QuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	var questions []entity.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// List возвращает вопросы, опционально одного раздела
func (r *QuestionRepo) List(categoryID *uint) ([]entity.Question, error) {
	var questions []entity.Question
	query := r.db.Preload("Category").Order("category_id, id")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// Update обновляет вопрос. Уже сохраненные ответы не пересчитываются.
func (r *QuestionRepo) Update(question *entity.Question) error {
	result := r.db.Model(&entity.Question{}).Where("id = ?", question.ID).Updates(map[string]interface{}{
		"text":           question.Text,
		"weight":         question.Weight,
		"correct_answer": question.CorrectAnswer,
		"na_score":       question.NAScore,
		"category_id":    question.CategoryID,
	})
	if result.Error != nil {
		return mapWriteError(result.Error, "question")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет вопрос. Ответы на него остаются в истории аудитов.
func (r *QuestionRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Count возвращает общее количество вопросов
func (r *QuestionRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Count(&count).Error
	return count, err
}
