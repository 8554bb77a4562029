package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
)

// CoffeeService управляет справочником кофеен
type CoffeeService struct {
	coffeeRepo repository.CoffeeRepository
}

// NewCoffeeService создает новый сервис кофеен
func NewCoffeeService(coffeeRepo repository.CoffeeRepository) *CoffeeService {
	return &CoffeeService{coffeeRepo: coffeeRepo}
}

// ListCoffees возвращает страницу кофеен
func (s *CoffeeService) ListCoffees(page, pageSize int) ([]entity.Coffee, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.coffeeRepo.List(pageSize, (page-1)*pageSize)
}

// GetCoffee возвращает кофейню по ID
func (s *CoffeeService) GetCoffee(id uint) (*entity.Coffee, error) {
	return s.coffeeRepo.GetByID(id)
}

// CreateCoffee создает кофейню; по умолчанию активна
func (s *CoffeeService) CreateCoffee(req dto.CreateCoffeeRequest) (*entity.Coffee, error) {
	coffee := &entity.Coffee{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
		Active:   true,
	}
	if req.Active != nil {
		coffee.Active = *req.Active
	}
	if coffee.Name == "" {
		return nil, fmt.Errorf("%w: coffee name is required", apperrors.ErrValidation)
	}
	if err := s.coffeeRepo.Create(coffee); err != nil {
		return nil, err
	}
	log.Printf("[CoffeeService] Создана кофейня #%d %q", coffee.ID, coffee.Name)
	return coffee, nil
}

// UpdateCoffee меняет только переданные поля
func (s *CoffeeService) UpdateCoffee(id uint, req dto.UpdateCoffeeRequest) (*entity.Coffee, error) {
	coffee, err := s.coffeeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name.Present() {
		name, _ := req.Name.Value()
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: coffee name cannot be empty", apperrors.ErrValidation)
		}
		coffee.Name = name
	}
	if req.Location.Present() {
		location, _ := req.Location.Value()
		coffee.Location = strings.TrimSpace(location)
	}
	if active, ok := req.Active.Value(); ok {
		coffee.Active = active
	}
	if err := s.coffeeRepo.Update(coffee); err != nil {
		return nil, err
	}
	return coffee, nil
}

// DeleteCoffee удаляет кофейню без аудитов
func (s *CoffeeService) DeleteCoffee(id uint) error {
	return s.coffeeRepo.Delete(id)
}
