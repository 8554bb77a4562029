package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
	"github.com/yourusername/coffee-audit-api/internal/pkg/optional"
)

func newCatalogServiceForTest() (*CatalogService, *MockCategoryRepository, *MockQuestionRepository) {
	categories := new(MockCategoryRepository)
	questions := new(MockQuestionRepository)
	return NewCatalogService(categories, questions), categories, questions
}

func intPtr(v int) *int { return &v }

func TestCatalogService_CreateCategory(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CategoryRequest
		repoErr error
		wantErr error
	}{
		{name: "успешное создание", req: dto.CategoryRequest{Name: "  Hygiène "}},
		{name: "пустое имя", req: dto.CategoryRequest{Name: "   "}, wantErr: apperrors.ErrValidation},
		{name: "дубликат имени", req: dto.CategoryRequest{Name: "Hygiène"}, repoErr: apperrors.ErrConflict, wantErr: apperrors.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s, categories, _ := newCatalogServiceForTest()
			categories.On("Create", mock.AnythingOfType("*entity.Category")).
				Run(func(args mock.Arguments) { args.Get(0).(*entity.Category).ID = 7 }).
				Return(tt.repoErr)

			// Act
			category, err := s.CreateCategory(tt.req)

			// Assert
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(7), category.ID)
			assert.Equal(t, "Hygiène", category.Name)
			assert.NotNil(t, category.Questions)
		})
	}
}

func TestCatalogService_DeleteCategory(t *testing.T) {
	tests := []struct {
		name       string
		getErr     error
		questions  int64
		wantErr    error
		wantDelete bool
	}{
		{name: "пустой раздел удаляется", wantDelete: true},
		{name: "раздел с вопросами", questions: 3, wantErr: apperrors.ErrConflict},
		{name: "раздел не найден", getErr: apperrors.ErrNotFound, wantErr: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s, categories, _ := newCatalogServiceForTest()
			if tt.getErr != nil {
				categories.On("GetByID", uint(4)).Return(nil, tt.getErr)
			} else {
				categories.On("GetByID", uint(4)).Return(&entity.Category{ID: 4, Name: "Service"}, nil)
			}
			categories.On("CountQuestions", uint(4)).Return(tt.questions, nil)
			categories.On("Delete", uint(4)).Return(nil)

			// Act
			err := s.DeleteCategory(4)

			// Assert
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantDelete {
				categories.AssertCalled(t, "Delete", uint(4))
			} else {
				categories.AssertNotCalled(t, "Delete", mock.Anything)
			}
		})
	}
}

func TestCatalogService_CreateQuestion_Defaults(t *testing.T) {
	// Arrange
	s, categories, questions := newCatalogServiceForTest()
	categories.On("GetByID", uint(1)).Return(&entity.Category{ID: 1}, nil)

	var saved *entity.Question
	questions.On("Create", mock.AnythingOfType("*entity.Question")).
		Run(func(args mock.Arguments) {
			saved = args.Get(0).(*entity.Question)
			saved.ID = 42
		}).
		Return(nil)
	questions.On("GetByID", uint(42)).Return(&entity.Question{ID: 42, Text: "Sol propre", Weight: 1, CorrectAnswer: entity.ChoiceYes, CategoryID: 1}, nil)

	// Act
	q, err := s.CreateQuestion(dto.CreateQuestionRequest{Text: " Sol propre ", CategoryID: 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), q.ID)
	require.NotNil(t, saved)
	assert.Equal(t, "Sol propre", saved.Text)
	assert.Equal(t, 1, saved.Weight)
	assert.Equal(t, entity.ChoiceYes, saved.CorrectAnswer)
	assert.Equal(t, 0, saved.NAScore)
}

func TestCatalogService_CreateQuestion_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateQuestionRequest
		wantErr error
	}{
		{name: "отрицательный вес", req: dto.CreateQuestionRequest{Text: "Q", Weight: intPtr(-1), CategoryID: 1}, wantErr: apperrors.ErrValidation},
		{name: "неизвестный правильный ответ", req: dto.CreateQuestionRequest{Text: "Q", CorrectAnswer: "peut-être", CategoryID: 1}, wantErr: apperrors.ErrValidation},
		{name: "отрицательный na_score", req: dto.CreateQuestionRequest{Text: "Q", NAScore: -2, CategoryID: 1}, wantErr: apperrors.ErrValidation},
		{name: "раздел не существует", req: dto.CreateQuestionRequest{Text: "Q", CategoryID: 99}, wantErr: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s, categories, questions := newCatalogServiceForTest()
			categories.On("GetByID", uint(1)).Return(&entity.Category{ID: 1}, nil)
			categories.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)

			// Act
			_, err := s.CreateQuestion(tt.req)

			// Assert
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			questions.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestCatalogService_UpdateQuestion_Partial(t *testing.T) {
	// Arrange
	s, categories, questions := newCatalogServiceForTest()
	existing := &entity.Question{ID: 5, Text: "Comptoir", Weight: 3, CorrectAnswer: entity.ChoiceYes, NAScore: 1, CategoryID: 1}
	questions.On("GetByID", uint(5)).Return(existing, nil)
	questions.On("Update", mock.AnythingOfType("*entity.Question")).Return(nil)

	req := dto.UpdateQuestionRequest{
		Weight:        optional.Of(5),
		CorrectAnswer: optional.Null[string](),
	}

	// Act
	_, err := s.UpdateQuestion(5, req)

	// Assert
	require.NoError(t, err)
	updated := questions.Calls[1].Arguments.Get(0).(*entity.Question)
	assert.Equal(t, "Comptoir", updated.Text)
	assert.Equal(t, 5, updated.Weight)
	assert.Equal(t, entity.ChoiceYes, updated.CorrectAnswer)
	assert.Equal(t, 1, updated.NAScore)
	categories.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestCatalogService_UpdateQuestion_MoveToMissingCategory(t *testing.T) {
	// Arrange
	s, categories, questions := newCatalogServiceForTest()
	questions.On("GetByID", uint(5)).Return(&entity.Question{ID: 5, Text: "Comptoir", Weight: 3, CorrectAnswer: entity.ChoiceYes, CategoryID: 1}, nil)
	categories.On("GetByID", uint(8)).Return(nil, apperrors.ErrNotFound)

	// Act
	_, err := s.UpdateQuestion(5, dto.UpdateQuestionRequest{CategoryID: optional.Of(uint(8))})

	// Assert
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	questions.AssertNotCalled(t, "Update", mock.Anything)
}
