package dto

import "github.com/yourusername/coffee-audit-api/internal/pkg/optional"

// CreateCoffeeRequest - тело POST /api/coffees
type CreateCoffeeRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Location string `json:"location" binding:"max=255"`
	Active   *bool  `json:"active"` // по умолчанию true
}

// UpdateCoffeeRequest - частичное обновление: меняются только переданные поля
type UpdateCoffeeRequest struct {
	Name     optional.Field[string] `json:"name"`
	Location optional.Field[string] `json:"location"`
	Active   optional.Field[bool]   `json:"active"`
}
