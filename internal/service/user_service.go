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

// UserService - администрирование пользователей
type UserService struct {
	userRepo   repository.UserRepository
	coffeeRepo repository.CoffeeRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, coffeeRepo repository.CoffeeRepository) *UserService {
	return &UserService{userRepo: userRepo, coffeeRepo: coffeeRepo}
}

// GetUser возвращает пользователя по ID
func (s *UserService) GetUser(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// ListUsers возвращает страницу пользователей
func (s *UserService) ListUsers(page, pageSize int) (*dto.PaginatedUsersResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	users, err := s.userRepo.List(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	total, err := s.userRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return &dto.PaginatedUsersResponse{Users: users, Total: total, Page: page, PerPage: pageSize}, nil
}

// CreateUser создает пользователя. Email уникален.
func (s *UserService) CreateUser(req dto.CreateUserRequest) (*entity.User, error) {
	role := entity.RoleViewer
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := entity.ParseRole(req.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, req.Role)
		}
		role = parsed
	}

	email := normalizeEmail(req.Email)
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrConflict, email)
	} else if !IsNotFoundErr(err) {
		return nil, err
	}

	if err := s.checkCoffee(req.CoffeeID); err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:                email,
		Password:             req.Password,
		FullName:             strings.TrimSpace(req.FullName),
		Role:                 role,
		CoffeeID:             req.CoffeeID,
		IsActive:             true,
		ReceiveDailyReport:   req.ReceiveDailyReport,
		ReceiveWeeklyReport:  req.ReceiveWeeklyReport,
		ReceiveMonthlyReport: req.ReceiveMonthlyReport,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	log.Printf("[UserService] Создан пользователь #%d %s (%s)", user.ID, user.Email, user.Role)
	return user, nil
}

// UpdateUser меняет только переданные поля
func (s *UserService) UpdateUser(id uint, req dto.UpdateUserRequest) (*entity.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if email, ok := req.Email.Value(); ok {
		email = normalizeEmail(email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidation)
		}
		if email != user.Email {
			if existing, err := s.userRepo.GetByEmail(email); err == nil && existing.ID != user.ID {
				return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrConflict, email)
			} else if err != nil && !IsNotFoundErr(err) {
				return nil, err
			}
			user.Email = email
		}
	}
	if password, ok := req.Password.Value(); ok && password != "" {
		user.Password = password // хешируется в BeforeSave
	}
	if name, ok := req.FullName.Value(); ok {
		user.FullName = strings.TrimSpace(name)
	}
	if raw, ok := req.Role.Value(); ok {
		role, valid := entity.ParseRole(raw)
		if !valid {
			return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, raw)
		}
		user.Role = role
	}
	if req.CoffeeID.Present() {
		coffeeID := req.CoffeeID.Ptr()
		if err := s.checkCoffee(coffeeID); err != nil {
			return nil, err
		}
		user.CoffeeID = coffeeID
	}
	if v, ok := req.IsActive.Value(); ok {
		user.IsActive = v
	}
	if v, ok := req.ReceiveDailyReport.Value(); ok {
		user.ReceiveDailyReport = v
	}
	if v, ok := req.ReceiveWeeklyReport.Value(); ok {
		user.ReceiveWeeklyReport = v
	}
	if v, ok := req.ReceiveMonthlyReport.Value(); ok {
		user.ReceiveMonthlyReport = v
	}

	user.Coffee = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser удаляет пользователя. Себя удалить нельзя.
func (s *UserService) DeleteUser(actor entity.Actor, id uint) error {
	if actor.UserID == id {
		return fmt.Errorf("%w: cannot delete yourself", apperrors.ErrConflict)
	}
	return s.userRepo.Delete(id)
}

func (s *UserService) checkCoffee(coffeeID *uint) error {
	if coffeeID == nil {
		return nil
	}
	if _, err := s.coffeeRepo.GetByID(*coffeeID); err != nil {
		if IsNotFoundErr(err) {
			return fmt.Errorf("%w: coffee #%d", apperrors.ErrNotFound, *coffeeID)
		}
		return err
	}
	return nil
}
