package entity

// Actor - аутентифицированный вызывающий: роль и атрибуты, от которых зависит доступ
type Actor struct {
	UserID   uint
	Role     Role
	CoffeeID *uint
}

// CanViewAudit: администратор видит все, аудитор - только свои,
// наблюдатель - только аудиты своей кофейни
func (a Actor) CanViewAudit(audit *Audit) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleAuditor:
		return audit.AuditorID == a.UserID
	case RoleViewer:
		return a.CoffeeID != nil && audit.CoffeeID == *a.CoffeeID
	}
	return false
}

// CanCreateAudit: все, кроме наблюдателя
func (a Actor) CanCreateAudit() bool {
	return a.Role == RoleAdmin || a.Role == RoleAuditor
}

// CanModifyAudit: администратор или аудитор-автор
func (a Actor) CanModifyAudit(audit *Audit) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleAuditor:
		return audit.AuditorID == a.UserID
	}
	return false
}

// IsAdmin сокращение для проверок административных операций
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
