package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

func TestParseChoice_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Choice
	}{
		{"верхний регистр", "OUI", ChoiceYes},
		{"смешанный регистр", "Non", ChoiceNo},
		{"N/A", "N/A", ChoiceNotApplicable},
		{"пустая строка", "", ChoiceUnknown},
		{"синонимы не переводятся", "Yes", ChoiceUnknown},
		{"пробел слева", " oui", ChoiceUnknown},
		{"перевод строки справа", "oui\n", ChoiceUnknown},
		{"табуляция и пробел", "\tn/a ", ChoiceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := ParseChoice(tt.raw)

			// Assert
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != ChoiceUnknown, got.Valid())
		})
	}
	assert.True(t, ParseChoice("n/a").IsNotApplicable())
}

func TestAuditAnswer_NormalizedChoice(t *testing.T) {
	raw := " Oui"

	assert.Equal(t, ChoiceUnknown, (&AuditAnswer{}).NormalizedChoice())
	assert.Equal(t, ChoiceUnknown, (&AuditAnswer{Choice: &raw}).NormalizedChoice())
	assert.Equal(t, " Oui", raw, "Сырое значение не меняется")
}

func TestQuestion_ExpectedChoice_DefaultsToYes(t *testing.T) {
	// Arrange
	q := &Question{Weight: 3}

	// Act & Assert
	assert.Equal(t, ChoiceYes, q.ExpectedChoice(), "Пустой correct_answer трактуется как oui")

	q.CorrectAnswer = "NON"
	assert.Equal(t, ChoiceNo, q.ExpectedChoice())

	q.CorrectAnswer = " n/a "
	assert.Equal(t, ChoiceNotApplicable, q.ExpectedChoice(), "Ввод администратора обрезается")
}

func TestQuestion_MaxAward(t *testing.T) {
	assert.Equal(t, 3, (&Question{Weight: 3, NAScore: 1}).MaxAward())
	assert.Equal(t, 5, (&Question{Weight: 2, NAScore: 5}).MaxAward())
}

func TestQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"валидный", Question{Text: "Le local est propre", Weight: 2, CategoryID: 1}, false},
		{"вес 0 допустим", Question{Text: "x", Weight: 0, CategoryID: 1}, false},
		{"пустой текст", Question{Text: "  ", Weight: 1, CategoryID: 1}, true},
		{"отрицательный вес", Question{Text: "x", Weight: -1, CategoryID: 1}, true},
		{"отрицательный na_score", Question{Text: "x", Weight: 1, NAScore: -2, CategoryID: 1}, true},
		{"неизвестный correct_answer", Question{Text: "x", Weight: 1, CorrectAnswer: "maybe", CategoryID: 1}, true},
		{"без категории", Question{Text: "x", Weight: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestion_Normalize(t *testing.T) {
	q := &Question{Text: "  Les frigos sont propres ", CorrectAnswer: "Non"}

	q.Normalize()

	assert.Equal(t, "Les frigos sont propres", q.Text)
	assert.Equal(t, ChoiceNo, q.CorrectAnswer)
}

func TestCategory_ComputeTotalScore(t *testing.T) {
	c := &Category{Questions: []Question{{Weight: 2}, {Weight: 1}, {Weight: 3}}}

	assert.Equal(t, 6, c.ComputeTotalScore())
	assert.Equal(t, 6, c.TotalScore)

	empty := &Category{}
	assert.Equal(t, 0, empty.ComputeTotalScore())
}
