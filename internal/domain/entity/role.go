package entity

import "strings"

// Role - роль пользователя в системе аудита
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleAuditor Role = "AUDITOR"
	RoleViewer  Role = "VIEWER"
)

// ParseRole нормализует строку в Role. Регистр не важен.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid проверяет, что роль входит в известный набор
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuditor, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
