package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// CatalogService управляет разделами и вопросами чек-листа.
// Изменение вопроса не пересчитывает уже сохраненные аудиты.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	questionRepo repository.QuestionRepository
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(categoryRepo repository.CategoryRepository, questionRepo repository.QuestionRepository) *CatalogService {
	return &CatalogService{categoryRepo: categoryRepo, questionRepo: questionRepo}
}

// ListCategories возвращает разделы с вопросами и TotalScore
func (s *CatalogService) ListCategories() ([]entity.Category, error) {
	return s.categoryRepo.List()
}

// GetCategory возвращает раздел с вопросами
func (s *CatalogService) GetCategory(id uint) (*entity.Category, error) {
	return s.categoryRepo.GetByIDWithQuestions(id)
}

// CreateCategory создает раздел, имя уникально
func (s *CatalogService) CreateCategory(req dto.CategoryRequest) (*entity.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	category := &entity.Category{Name: name, Description: req.Description}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	category.Questions = []entity.Question{}
	log.Printf("[CatalogService] Создан раздел #%d %q", category.ID, category.Name)
	return category, nil
}

// UpdateCategory меняет имя и описание раздела
func (s *CatalogService) UpdateCategory(id uint, req dto.CategoryRequest) (*entity.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	if err := s.categoryRepo.Update(&entity.Category{ID: id, Name: name, Description: req.Description}); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByIDWithQuestions(id)
}

// DeleteCategory удаляет пустой раздел. Раздел с вопросами удалить нельзя.
func (s *CatalogService) DeleteCategory(id uint) error {
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountQuestions(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category #%d still has %d questions", apperrors.ErrConflict, id, count)
	}
	return s.categoryRepo.Delete(id)
}

// ListQuestions возвращает вопросы, опционально одного раздела
func (s *CatalogService) ListQuestions(categoryID *uint) ([]entity.Question, error) {
	return s.questionRepo.List(categoryID)
}

// GetQuestion возвращает вопрос
func (s *CatalogService) GetQuestion(id uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(id)
}

// CreateQuestion создает вопрос в существующем разделе
func (s *CatalogService) CreateQuestion(req dto.CreateQuestionRequest) (*entity.Question, error) {
	weight := 1
	if req.Weight != nil {
		weight = *req.Weight
	}
	question := &entity.Question{
		Text:          req.Text,
		Weight:        weight,
		CorrectAnswer: entity.Choice(req.CorrectAnswer),
		NAScore:       req.NAScore,
		CategoryID:    req.CategoryID,
	}
	question.Normalize()
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(question.CategoryID); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}
	log.Printf("[CatalogService] Создан вопрос #%d в разделе #%d (вес %d)", question.ID, question.CategoryID, question.Weight)
	return s.questionRepo.GetByID(question.ID)
}

// UpdateQuestion частично обновляет вопрос
func (s *CatalogService) UpdateQuestion(id uint, req dto.UpdateQuestionRequest) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if v, ok := req.Text.Value(); ok {
		question.Text = v
	}
	if v, ok := req.Weight.Value(); ok {
		question.Weight = v
	}
	if req.CorrectAnswer.Present() {
		v, _ := req.CorrectAnswer.Value() // null возвращает значение по умолчанию "oui"
		question.CorrectAnswer = entity.Choice(v)
	}
	if v, ok := req.NAScore.Value(); ok {
		question.NAScore = v
	}
	categoryChanged := false
	if v, ok := req.CategoryID.Value(); ok && v != question.CategoryID {
		question.CategoryID = v
		categoryChanged = true
	}

	question.Normalize()
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if categoryChanged {
		if err := s.ensureCategory(question.CategoryID); err != nil {
			return nil, err
		}
	}
	question.Category = nil
	if err := s.questionRepo.Update(question); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByID(id)
}

// DeleteQuestion удаляет вопрос. Сохраненные ответы на него остаются в аудитах.
func (s *CatalogService) DeleteQuestion(id uint) error {
	return s.questionRepo.Delete(id)
}

func (s *CatalogService) ensureCategory(id uint) error {
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		if IsNotFoundErr(err) {
			return fmt.Errorf("%w: category #%d", apperrors.ErrNotFound, id)
		}
		return err
	}
	return nil
}
