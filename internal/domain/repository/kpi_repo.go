package repository

import (
	"time"
)

// ScoreStats - агрегаты по оценкам аудитов
type ScoreStats struct {
	Count   int64
	Average float64
}

// CoffeeAverage - средняя оценка по одной кофейне
type CoffeeAverage struct {
	CoffeeID   uint
	CoffeeName string
	Average    float64
	Count      int64
}

// KPIRepository - агрегирующие запросы только для чтения
type KPIRepository interface {
	Stats(filter AuditFilter) (ScoreStats, error)
	CountAtLeast(filter AuditFilter, minScore float64) (int64, error)
	// TopCoffee возвращает кофейню с наибольшей средней оценкой, nil если аудитов нет
	TopCoffee(filter AuditFilter) (*CoffeeAverage, error)
	// RecentScores возвращает оценки последних limit аудитов от новых к старым
	RecentScores(filter AuditFilter, limit int) ([]float64, error)
	AveragesByCoffee(filter AuditFilter) ([]CoffeeAverage, error)
	CountCoffees(onlyActive bool) (int64, error)
}

// MonthStart возвращает начало месяца для t в его часовом поясе
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
