package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User представляет пользователя системы аудита
type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Email    string  `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password string  `gorm:"size:100;not null" json:"-"`
	FullName string  `gorm:"size:150;not null;default:''" json:"full_name"`
	IsActive bool    `gorm:"not null" json:"is_active"`
	Role     Role    `gorm:"size:20;not null;default:'VIEWER'" json:"role"`
	CoffeeID *uint   `gorm:"index" json:"coffee_id"` // только для VIEWER
	Coffee   *Coffee `gorm:"foreignKey:CoffeeID" json:"-"`

	// Подписки на рассылку отчетов
	ReceiveDailyReport   bool `gorm:"not null;default:false" json:"receive_daily_report"`
	ReceiveWeeklyReport  bool `gorm:"not null;default:false" json:"receive_weekly_report"`
	ReceiveMonthlyReport bool `gorm:"not null;default:false" json:"receive_monthly_report"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Actor возвращает срез пользователя, достаточный для проверок доступа
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role, CoffeeID: u.CoffeeID}
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !isBcryptHash(u.Password) {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] Ошибка при хешировании пароля для email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
