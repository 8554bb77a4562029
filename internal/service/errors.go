package service

import (
	"errors"

	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// Ошибки сервисов, которые обработчики различают отдельно от общих apperrors
var (
	// ErrInvalidCredentials - неверная пара email/пароль (ответ не раскрывает, что именно не так)
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserInactive - учетная запись отключена администратором
	ErrUserInactive = errors.New("user is inactive")
)

// IsNotFoundErr проверяет, что ошибка означает отсутствие записи
func IsNotFoundErr(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
