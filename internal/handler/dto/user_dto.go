package dto

import (
	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/pkg/optional"
)

// LoginRequest - тело POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse - ответ на успешный вход
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"` // секунды
	User        *entity.User `json:"user"`
}

// CreateUserRequest - тело POST /api/users
type CreateUserRequest struct {
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=4"`
	FullName             string `json:"full_name"`
	Role                 string `json:"role"` // по умолчанию VIEWER
	CoffeeID             *uint  `json:"coffee_id"`
	IsActive             *bool  `json:"is_active"`
	ReceiveDailyReport   bool   `json:"receive_daily_report"`
	ReceiveWeeklyReport  bool   `json:"receive_weekly_report"`
	ReceiveMonthlyReport bool   `json:"receive_monthly_report"`
}

// UpdateUserRequest - частичное обновление пользователя
type UpdateUserRequest struct {
	Email                optional.Field[string] `json:"email"`
	Password             optional.Field[string] `json:"password"`
	FullName             optional.Field[string] `json:"full_name"`
	Role                 optional.Field[string] `json:"role"`
	CoffeeID             optional.Field[uint]   `json:"coffee_id"`
	IsActive             optional.Field[bool]   `json:"is_active"`
	ReceiveDailyReport   optional.Field[bool]   `json:"receive_daily_report"`
	ReceiveWeeklyReport  optional.Field[bool]   `json:"receive_weekly_report"`
	ReceiveMonthlyReport optional.Field[bool]   `json:"receive_monthly_report"`
}

// PaginatedUsersResponse - страница пользователей
type PaginatedUsersResponse struct {
	Users   []entity.User `json:"users"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}
