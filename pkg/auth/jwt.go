package auth

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	issuer = "coffee-audit-api"

	// usageWSTicket помечает короткоживущий токен для подключения к /ws
	usageWSTicket = "websocket_auth"
)

// Ошибки разбора токена
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenInvalid   = errors.New("token validation failed")
	ErrWrongUsage     = errors.New("token usage mismatch")
)

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Usage  string `json:"usage,omitempty"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет HS256 токены
type JWTService struct {
	secret         []byte
	expiration     time.Duration
	wsTicketExpiry time.Duration
	now            func() time.Time
}

// NewJWTService создает новый сервис JWT
func NewJWTService(secret string, expirationHrs int, wsTicketExpirySec int) (*JWTService, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("JWT secret must be at least 16 characters")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	wsExpiry := time.Duration(wsTicketExpirySec) * time.Second
	if wsExpiry <= 0 {
		wsExpiry = 60 * time.Second
	}
	return &JWTService{
		secret:         []byte(secret),
		expiration:     time.Duration(expirationHrs) * time.Hour,
		wsTicketExpiry: wsExpiry,
		now:            time.Now,
	}, nil
}

// Expiration возвращает срок жизни access-токена
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// WSTicketExpiry возвращает срок жизни тикета websocket-подключения
func (s *JWTService) WSTicketExpiry() time.Duration {
	return s.wsTicketExpiry
}

// GenerateToken создает access-токен для пользователя
func (s *JWTService) GenerateToken(userID uint, email, role string) (string, error) {
	return s.sign(userID, email, role, "", s.expiration)
}

// GenerateWSTicket создает короткоживущий тикет для websocket-подключения
func (s *JWTService) GenerateWSTicket(userID uint, email, role string) (string, error) {
	return s.sign(userID, email, role, usageWSTicket, s.wsTicketExpiry)
}

// ParseToken проверяет access-токен. WS-тикет здесь не принимается.
func (s *JWTService) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Usage != "" {
		return nil, ErrWrongUsage
	}
	return claims, nil
}

// ParseWSTicket проверяет тикет websocket-подключения
func (s *JWTService) ParseWSTicket(ticket string) (*JWTCustomClaims, error) {
	claims, err := s.parse(ticket)
	if err != nil {
		return nil, err
	}
	if claims.Usage != usageWSTicket {
		return nil, ErrWrongUsage
	}
	return claims, nil
}

func (s *JWTService) sign(userID uint, email, role, usage string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &JWTCustomClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Usage:  usage,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) parse(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrTokenMalformed
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				log.Printf("[JWT] Токен истек для пользователя ID=%d", claims.UserID)
				return nil, ErrTokenExpired
			}
		}
		log.Printf("[JWT] Ошибка при разборе токена: %v", err)
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
