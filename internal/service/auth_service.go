package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/domain/repository"
	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
	"github.com/yourusername/coffee-audit-api/pkg/auth"
)

// AuthService выполняет вход и превращает токен в Actor
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{userRepo: userRepo, jwtService: jwtService}, nil
}

// Login проверяет учетные данные и выпускает access-токен
func (s *AuthService) Login(email, password string) (*dto.TokenResponse, error) {
	user, err := s.AuthenticateUser(email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	log.Printf("[AuthService] Вход пользователя ID=%d (%s)", user.ID, user.Role)
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwtService.Expiration().Seconds()),
		User:        user,
	}, nil
}

// AuthenticateUser проверяет email и пароль
func (s *AuthService) AuthenticateUser(email, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// GenerateWsTicket выпускает короткоживущий тикет для подключения к /ws
func (s *AuthService) GenerateWsTicket(actor entity.Actor) (string, error) {
	user, err := s.userRepo.GetByID(actor.UserID)
	if err != nil {
		return "", err
	}
	return s.jwtService.GenerateWSTicket(user.ID, user.Email, string(user.Role))
}

// ResolveActor загружает актуальные роль и кофейню пользователя из токена.
// Роль берется из БД, а не из claims: изменения прав действуют сразу.
func (s *AuthService) ResolveActor(claims *auth.JWTCustomClaims) (entity.Actor, error) {
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return entity.Actor{}, fmt.Errorf("%w: user #%d no longer exists", apperrors.ErrUnauthorized, claims.UserID)
		}
		return entity.Actor{}, err
	}
	if !user.IsActive {
		return entity.Actor{}, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, ErrUserInactive)
	}
	return user.Actor(), nil
}

// JWT возвращает сервис токенов (нужен middleware)
func (s *AuthService) JWT() *auth.JWTService {
	return s.jwtService
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
