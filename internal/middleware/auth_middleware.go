package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
	"github.com/yourusername/coffee-audit-api/pkg/auth"
)

const actorContextKey = "actor"

// ActorResolver превращает claims токена в актуального Actor (роль и кофейня из БД)
type ActorResolver interface {
	ResolveActor(claims *auth.JWTCustomClaims) (entity.Actor, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	jwtService *auth.JWTService
	resolver   ActorResolver
}

// NewAuthMiddleware создает новый middleware
func NewAuthMiddleware(jwtService *auth.JWTService, resolver ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, resolver: resolver}
}

// RequireAuth проверяет Bearer токен и кладет Actor в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		// Проверяем формат заголовка Bearer {token}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.jwtService.ParseToken(parts[1])
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errorType = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		actor, err := m.resolver.ResolveActor(claims)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User is inactive or no longer exists", "error_type": "user_invalid"})
				return
			}
			log.Printf("[AuthMiddleware] Ошибка загрузки пользователя #%d: %v", claims.UserID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequireRoles пропускает только перечисленные роли. Должен применяться ПОСЛЕ RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role", "error_type": "forbidden"})
	}
}

// AdminOnly - сокращение для RequireRoles(ADMIN)
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return m.RequireRoles(entity.RoleAdmin)
}

// SetActor сохраняет Actor в контексте запроса
func SetActor(c *gin.Context, actor entity.Actor) {
	c.Set(actorContextKey, actor)
	c.Set("user_id", actor.UserID)
}

// ActorFromContext возвращает Actor, установленный RequireAuth
func ActorFromContext(c *gin.Context) (entity.Actor, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return entity.Actor{}, false
	}
	actor, ok := v.(entity.Actor)
	return actor, ok
}
