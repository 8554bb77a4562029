package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
)

// KPIRepo реализует repository.KPIRepository агрегирующими SQL-запросами
type KPIRepo struct {
	db *gorm.DB
}

// NewKPIRepo создает новый репозиторий показателей
func NewKPIRepo(db *gorm.DB) *KPIRepo {
	return &KPIRepo{db: db}
}

// Stats возвращает количество и среднюю оценку
func (r *KPIRepo) Stats(filter repository.AuditFilter) (repository.ScoreStats, error) {
	var row struct {
		Count   int64
		Average float64
	}
	err := applyAuditFilter(r.db.Model(&entity.Audit{}), filter).
		Select("COUNT(audits.id) AS count, COALESCE(AVG(audits.score), 0) AS average").
		Scan(&row).Error
	if err != nil {
		return repository.ScoreStats{}, err
	}
	return repository.ScoreStats{Count: row.Count, Average: row.Average}, nil
}

// CountAtLeast возвращает количество аудитов с оценкой не ниже minScore
func (r *KPIRepo) CountAtLeast(filter repository.AuditFilter, minScore float64) (int64, error) {
	var count int64
	err := applyAuditFilter(r.db.Model(&entity.Audit{}), filter).
		Where("audits.score >= ?", minScore).
		Count(&count).Error
	return count, err
}

// TopCoffee возвращает кофейню с наибольшей средней оценкой
func (r *KPIRepo) TopCoffee(filter repository.AuditFilter) (*repository.CoffeeAverage, error) {
	averages, err := r.averages(filter, 1)
	if err != nil {
		return nil, err
	}
	if len(averages) == 0 {
		return nil, nil
	}
	return &averages[0], nil
}

// RecentScores возвращает оценки последних аудитов
func (r *KPIRepo) RecentScores(filter repository.AuditFilter, limit int) ([]float64, error) {
	scores := make([]float64, 0, limit)
	err := applyAuditFilter(r.db.Model(&entity.Audit{}), filter).
		Order("audits.created_at DESC, audits.id DESC").
		Limit(limit).
		Pluck("audits.score", &scores).Error
	return scores, err
}

// AveragesByCoffee возвращает средние по всем кофейням, лучшие первыми
func (r *KPIRepo) AveragesByCoffee(filter repository.AuditFilter) ([]repository.CoffeeAverage, error) {
	return r.averages(filter, 0)
}

func (r *KPIRepo) averages(filter repository.AuditFilter, limit int) ([]repository.CoffeeAverage, error) {
	var rows []repository.CoffeeAverage
	query := applyAuditFilter(r.db.Model(&entity.Audit{}), filter).
		Select("coffees.id AS coffee_id, coffees.name AS coffee_name, AVG(audits.score) AS average, COUNT(audits.id) AS count").
		Joins("JOIN coffees ON coffees.id = audits.coffee_id").
		Group("coffees.id, coffees.name").
		Order("average DESC, coffees.id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return rows, nil
}

// CountCoffees возвращает количество кофеен
func (r *KPIRepo) CountCoffees(onlyActive bool) (int64, error) {
	var count int64
	query := r.db.Model(&entity.Coffee{})
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}
