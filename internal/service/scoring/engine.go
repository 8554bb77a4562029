// Package scoring превращает набор ответов аудита в начисленные баллы и итоговый процент.
// Все функции пакета чистые: без ввода-вывода и без общего изменяемого состояния.
package scoring

import (
	"math"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// SubmittedAnswer - ответ в том виде, в каком он пришел от клиента
type SubmittedAnswer struct {
	QuestionID uint
	Choice     string
}

// Catalog - источник вопросов для подсчета. Реализация должна быть безопасна
// для конкурентного чтения.
type Catalog interface {
	Lookup(questionID uint) (*entity.Question, bool)
}

// MapCatalog - снимок каталога в памяти
type MapCatalog map[uint]*entity.Question

// NewMapCatalog строит снимок из списка вопросов
func NewMapCatalog(questions []entity.Question) MapCatalog {
	c := make(MapCatalog, len(questions))
	for i := range questions {
		q := questions[i]
		c[q.ID] = &q
	}
	return c
}

// Lookup реализует Catalog
func (c MapCatalog) Lookup(questionID uint) (*entity.Question, bool) {
	q, ok := c[questionID]
	return q, ok
}

// AnswerScore - результат для одного ответа, в том же порядке, что и вход
type AnswerScore struct {
	QuestionID uint
	Awarded    int
	Possible   int  // вклад в знаменатель
	Resolved   bool // вопрос найден в каталоге
}

// Result - результат подсчета по аудиту
type Result struct {
	Answers    []AnswerScore
	Awarded    int
	Possible   int
	Percentage float64
}

// AwardedByQuestion возвращает баллы по id вопроса.
// Для дубликатов одного вопроса остается значение последнего ответа.
func (r Result) AwardedByQuestion() map[uint]int {
	m := make(map[uint]int, len(r.Answers))
	for _, a := range r.Answers {
		m[a.QuestionID] = a.Awarded
	}
	return m
}

// Award применяет правило начисления к одному ответу:
// совпадение с правильным ответом дает weight, "n/a" дает na_score, остальное 0.
// Порядок проверок важен: если правильный ответ сам "n/a", начисляется weight.
func Award(q *entity.Question, choice entity.Choice) int {
	switch {
	case choice.Valid() && choice == q.ExpectedChoice():
		return q.Weight
	case choice.IsNotApplicable():
		return q.NAScore
	default:
		return 0
	}
}

// ScoreAudit считает баллы по каждому ответу и итоговый процент.
// Ответ на неизвестный вопрос получает 0 и не участвует ни в числителе, ни в знаменателе.
// Знаменатель получает вес вопроса для каждого найденного ответа, включая "n/a".
// Дубликаты не схлопываются.
func ScoreAudit(answers []SubmittedAnswer, catalog Catalog) Result {
	res := Result{Answers: make([]AnswerScore, len(answers))}

	for i, a := range answers {
		res.Answers[i].QuestionID = a.QuestionID

		q, ok := catalog.Lookup(a.QuestionID)
		if !ok || q == nil {
			continue
		}

		awarded := Award(q, entity.ParseChoice(a.Choice))
		res.Answers[i].Awarded = awarded
		res.Answers[i].Possible = q.Weight
		res.Answers[i].Resolved = true

		res.Awarded += awarded
		res.Possible += q.Weight
	}

	res.Percentage = Percentage(res.Awarded, res.Possible)
	return res
}

// Percentage возвращает round(awarded/possible*100, 2) или 0 при нулевом знаменателе
func Percentage(awarded, possible int) float64 {
	if possible <= 0 {
		return 0.0
	}
	return Round2(float64(awarded) / float64(possible) * 100)
}

// Round2 округляет до двух знаков после запятой
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
