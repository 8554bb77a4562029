package entity

import "time"

// Category - раздел чек-листа аудита (например, "Hygiène et Propreté")
type Category struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:150;not null;uniqueIndex" json:"name"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Questions   []Question `gorm:"foreignKey:CategoryID" json:"questions,omitempty"`

	// TotalScore не хранится в БД, пересчитывается при каждом чтении вопросов
	TotalScore int `gorm:"-" json:"total_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "audit_categories"
}

// ComputeTotalScore пересчитывает TotalScore как сумму весов загруженных вопросов
func (c *Category) ComputeTotalScore() int {
	total := 0
	for i := range c.Questions {
		total += c.Questions[i].Weight
	}
	c.TotalScore = total
	return total
}
