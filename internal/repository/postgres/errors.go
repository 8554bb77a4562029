package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgStringTooLong       = "22001"
)

// pgCode достает код ошибки Postgres для pgconn и lib/pq драйверов
func pgCode(err error) string {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isUniqueViolation проверяет Postgres unique violation (23505)
func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// isForeignKeyViolation проверяет Postgres foreign key violation (23503)
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// mapWriteError переводит ошибки ограничений БД в ошибки приложения
func mapWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", apperrors.ErrConflict, what)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s is referenced by other records", apperrors.ErrConflict, what)
	case pgCode(err) == pgStringTooLong:
		return fmt.Errorf("%w: %s has a value too long for its column", apperrors.ErrValidation, what)
	}
	return err
}

// mapNotFound переводит gorm.ErrRecordNotFound в apperrors.ErrNotFound
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}
