package repository

import (
	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// ReportPeriod - периодичность рассылки отчета
type ReportPeriod string

const (
	ReportDaily   ReportPeriod = "daily"
	ReportWeekly  ReportPeriod = "weekly"
	ReportMonthly ReportPeriod = "monthly"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
	Delete(id uint) error
	List(limit, offset int) ([]entity.User, error)
	Count() (int64, error)
	// ListReportRecipients возвращает активных пользователей, подписанных на отчет за период
	ListReportRecipients(period ReportPeriod) ([]entity.User, error)
}
