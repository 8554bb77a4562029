package repository

import (
	"context"
	"time"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
)

// AuditFilter ограничивает выборку аудитов. Пустые поля не фильтруют.
type AuditFilter struct {
	AuditorID *uint
	CoffeeID  *uint
	From      *time.Time
	To        *time.Time
}

// AuditRepository определяет методы чтения аудитов и точку входа в транзакцию записи.
// Ответы аудита пишутся только через AuditTx: аудит и его ответы меняются одной единицей.
type AuditRepository interface {
	// GetByID загружает аудит с ответами, кофейней и аудитором
	GetByID(id uint) (*entity.Audit, error)
	// List возвращает аудиты по фильтру от новых к старым с общим количеством
	List(filter AuditFilter, limit, offset int) ([]entity.Audit, int64, error)
	// ListAll возвращает все аудиты по фильтру без ответов (для экспорта и отчетов)
	ListAll(filter AuditFilter) ([]entity.Audit, error)
	// Transaction выполняет fn в одной транзакции БД; ошибка fn откатывает все изменения
	Transaction(ctx context.Context, fn func(tx AuditTx) error) error
}

// AuditTx - операции, доступные внутри транзакции записи аудита
type AuditTx interface {
	// GetAuditForUpdate блокирует строку аудита до конца транзакции
	GetAuditForUpdate(id uint) (*entity.Audit, error)
	CoffeeExists(id uint) (bool, error)
	// QuestionsByIDs читает снимок каталога внутри той же транзакции
	QuestionsByIDs(ids []uint) ([]entity.Question, error)
	CreateAudit(audit *entity.Audit) error
	// UpdateFields обновляет перечисленные колонки аудита (включая NULL)
	UpdateFields(auditID uint, fields map[string]interface{}) error
	DeleteAnswers(auditID uint) error
	CreateAnswers(answers []entity.AuditAnswer) error
	UpdateScore(auditID uint, score float64) error
	DeleteAudit(auditID uint) error
	// GetAudit перечитывает аудит с ответами внутри транзакции
	GetAudit(id uint) (*entity.Audit, error)
}
