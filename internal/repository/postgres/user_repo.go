package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя
func (r *UserRepo) Create(user *entity.User) error {
	return mapWriteError(r.db.Create(user).Error, "user")
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email (без учета регистра)
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

// Update сохраняет пользователя целиком (пароль хешируется в BeforeSave)
func (r *UserRepo) Update(user *entity.User) error {
	return mapWriteError(r.db.Save(user).Error, "user")
}

// Delete удаляет пользователя. Пользователя с аудитами удалить нельзя (FK).
func (r *UserRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.User{}, id)
	if result.Error != nil {
		return mapWriteError(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает список пользователей с пагинацией
func (r *UserRepo) List(limit, offset int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.Order("id").Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

// Count возвращает количество пользователей
func (r *UserRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.User{}).Count(&count).Error
	return count, err
}

// ListReportRecipients возвращает активных подписчиков отчета за период
func (r *UserRepo) ListReportRecipients(period repository.ReportPeriod) ([]entity.User, error) {
	var column string
	switch period {
	case repository.ReportDaily:
		column = "receive_daily_report"
	case repository.ReportWeekly:
		column = "receive_weekly_report"
	case repository.ReportMonthly:
		column = "receive_monthly_report"
	default:
		return nil, fmt.Errorf("%w: unknown report period %q", apperrors.ErrValidation, period)
	}

	var users []entity.User
	err := r.db.Where("is_active = ? AND "+column+" = ?", true, true).Order("id").Find(&users).Error
	return users, err
}
