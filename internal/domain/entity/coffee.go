package entity

// Coffee - точка сети (кофейня), которую проверяют аудиторы
type Coffee struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Location string `gorm:"size:255;not null;default:''" json:"location"`
	Active   bool   `gorm:"not null" json:"active"`
}

// TableName определяет имя таблицы для GORM
func (Coffee) TableName() string {
	return "coffees"
}
