package websocket

import "github.com/yourusername/coffee-audit-api/internal/domain/entity"

// Типы сообщений ленты аудитов (совпадают с entity.AuditEventType)
const (
	// AUDIT_CREATED сообщает о новом аудите
	AUDIT_CREATED = string(entity.AuditCreated)

	// AUDIT_UPDATED сообщает об изменении аудита (в том числе пересчете оценки)
	AUDIT_UPDATED = string(entity.AuditUpdated)

	// AUDIT_DELETED сообщает об удалении аудита
	AUDIT_DELETED = string(entity.AuditDeleted)
)

// Служебные типы сообщений
const (
	// CLIENT_HEARTBEAT отправляет клиент для проверки соединения
	CLIENT_HEARTBEAT = "user:heartbeat"

	// SERVER_HEARTBEAT ответ сервера на CLIENT_HEARTBEAT
	SERVER_HEARTBEAT = "server:heartbeat"

	// SERVER_ERROR стандартизированная ошибка для клиента
	SERVER_ERROR = "server:error"
)
