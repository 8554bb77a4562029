package entity

import "strings"

// Choice - нормализованный ответ на вопрос аудита.
// Сравнение с правильным ответом всегда идет по нормализованному значению.
type Choice string

const (
	ChoiceYes           Choice = "oui"
	ChoiceNo            Choice = "non"
	ChoiceNotApplicable Choice = "n/a"
	// ChoiceUnknown - все, что не входит в словарь, включая пустой ответ
	ChoiceUnknown Choice = "unknown"
)

// ParseChoice приводит строку к нижнему регистру. Пробелы не обрезаются:
// " oui" не совпадает с "oui" и дает ChoiceUnknown.
func ParseChoice(raw string) Choice {
	switch c := Choice(strings.ToLower(raw)); c {
	case ChoiceYes, ChoiceNo, ChoiceNotApplicable:
		return c
	}
	return ChoiceUnknown
}

// Valid проверяет, что значение входит в закрытый словарь oui / non / n/a
func (c Choice) Valid() bool {
	switch c {
	case ChoiceYes, ChoiceNo, ChoiceNotApplicable:
		return true
	}
	return false
}

// IsNotApplicable сообщает, что ответ - "не применимо"
func (c Choice) IsNotApplicable() bool {
	return c == ChoiceNotApplicable
}

func (c Choice) String() string {
	return string(c)
}
