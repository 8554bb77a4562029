package repository

import (
	"time"
)

// CacheRepository - кеш показателей KPI. Отсутствие ключа возвращается как apperrors.ErrNotFound.
type CacheRepository interface {
	Get(key string) (string, error)
	Delete(key string) error
	// Increment атомарно увеличивает счетчик (версия кеша KPI), создавая его при отсутствии
	Increment(key string) (int64, error)
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
}
