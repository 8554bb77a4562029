package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// AuditRepo реализует repository.AuditRepository
type AuditRepo struct {
	db *gorm.DB
}

// NewAuditRepo создает новый репозиторий аудитов
func NewAuditRepo(db *gorm.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// GetByID возвращает аудит с ответами, кофейней, аудитором и вопросами ответов
func (r *AuditRepo) GetByID(id uint) (*entity.Audit, error) {
	return loadAudit(r.db, id)
}

// List возвращает аудиты по фильтру с пагинацией и общим количеством
func (r *AuditRepo) List(filter repository.AuditFilter, limit, offset int) ([]entity.Audit, int64, error) {
	var total int64
	if err := applyAuditFilter(r.db.Model(&entity.Audit{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var audits []entity.Audit
	err := applyAuditFilter(r.db, filter).
		Preload("Coffee").
		Preload("Auditor").
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("audit_answers.id") }).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&audits).Error
	if err != nil {
		return nil, 0, err
	}
	if err := attachQuestions(r.db, audits); err != nil {
		return nil, 0, err
	}
	return audits, total, nil
}

// ListAll возвращает все аудиты по фильтру без ответов
func (r *AuditRepo) ListAll(filter repository.AuditFilter) ([]entity.Audit, error) {
	var audits []entity.Audit
	err := applyAuditFilter(r.db, filter).
		Preload("Coffee").
		Preload("Auditor").
		Order("created_at DESC, id DESC").
		Find(&audits).Error
	return audits, err
}

// Transaction выполняет fn в транзакции gorm
func (r *AuditRepo) Transaction(ctx context.Context, fn func(tx repository.AuditTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&auditTx{db: tx})
	})
}

// auditTx реализует repository.AuditTx поверх открытой транзакции
type auditTx struct {
	db *gorm.DB
}

func (t *auditTx) GetAuditForUpdate(id uint) (*entity.Audit, error) {
	var audit entity.Audit
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&audit, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	// Ответы читаются после блокировки строки аудита, конкурентные писатели ждут
	if err := t.db.Where("audit_id = ?", id).Order("id").Find(&audit.Answers).Error; err != nil {
		return nil, err
	}
	return &audit, nil
}

func (t *auditTx) CoffeeExists(id uint) (bool, error) {
	var count int64
	err := t.db.Model(&entity.Coffee{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (t *auditTx) QuestionsByIDs(ids []uint) ([]entity.Question, error) {
	var questions []entity.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := t.db.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (t *auditTx) CreateAudit(audit *entity.Audit) error {
	return mapWriteError(t.db.Omit(clause.Associations).Create(audit).Error, "audit")
}

func (t *auditTx) UpdateFields(auditID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := t.db.Model(&entity.Audit{}).Where("id = ?", auditID).Updates(fields)
	if result.Error != nil {
		return mapWriteError(result.Error, "audit")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *auditTx) DeleteAnswers(auditID uint) error {
	return t.db.Where("audit_id = ?", auditID).Delete(&entity.AuditAnswer{}).Error
}

func (t *auditTx) CreateAnswers(answers []entity.AuditAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return mapWriteError(t.db.Omit(clause.Associations).Create(&answers).Error, "audit answer")
}

func (t *auditTx) UpdateScore(auditID uint, score float64) error {
	return t.db.Model(&entity.Audit{}).Where("id = ?", auditID).
		Updates(map[string]interface{}{"score": score, "updated_at": gorm.Expr("NOW()")}).Error
}

func (t *auditTx) DeleteAudit(auditID uint) error {
	result := t.db.Delete(&entity.Audit{}, auditID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *auditTx) GetAudit(id uint) (*entity.Audit, error) {
	return loadAudit(t.db, id)
}

func loadAudit(db *gorm.DB, id uint) (*entity.Audit, error) {
	var audit entity.Audit
	err := db.Preload("Coffee").
		Preload("Auditor").
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("audit_answers.id") }).
		First(&audit, id).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	audits := []entity.Audit{audit}
	if err := attachQuestions(db, audits); err != nil {
		return nil, err
	}
	return &audits[0], nil
}

// attachQuestions подставляет вопросы (с разделами) в ответы одним запросом.
// Ответы на удаленные вопросы остаются без Question.
func attachQuestions(db *gorm.DB, audits []entity.Audit) error {
	idSet := make(map[uint]struct{})
	for i := range audits {
		for _, a := range audits[i].Answers {
			idSet[a.QuestionID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var questions []entity.Question
	if err := db.Preload("Category").Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return err
	}
	byID := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	for i := range audits {
		for j := range audits[i].Answers {
			audits[i].Answers[j].Question = byID[audits[i].Answers[j].QuestionID]
		}
	}
	return nil
}

func applyAuditFilter(db *gorm.DB, filter repository.AuditFilter) *gorm.DB {
	if filter.AuditorID != nil {
		db = db.Where("audits.auditor_id = ?", *filter.AuditorID)
	}
	if filter.CoffeeID != nil {
		db = db.Where("audits.coffee_id = ?", *filter.CoffeeID)
	}
	if filter.From != nil {
		db = db.Where("audits.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("audits.created_at < ?", *filter.To)
	}
	return db
}
