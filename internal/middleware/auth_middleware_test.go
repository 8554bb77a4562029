package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
	"github.com/yourusername/coffee-audit-api/pkg/auth"
)

type stubResolver struct {
	actors map[uint]entity.Actor
}

func (r *stubResolver) ResolveActor(claims *auth.JWTCustomClaims) (entity.Actor, error) {
	actor, ok := r.actors[claims.UserID]
	if !ok {
		return entity.Actor{}, fmt.Errorf("%w: user #%d", apperrors.ErrUnauthorized, claims.UserID)
	}
	return actor, nil
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService, err := auth.NewJWTService("middleware-secret-123456", 1, 60)
	require.NoError(t, err)

	resolver := &stubResolver{actors: map[uint]entity.Actor{
		1:  {UserID: 1, Role: entity.RoleAdmin},
		10: {UserID: 10, Role: entity.RoleAuditor},
	}}
	m := NewAuthMiddleware(jwtService, resolver)

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		actor, _ := ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{"role": actor.Role, "user_id": actor.UserID})
	})
	r.DELETE("/admin", m.RequireAuth(), m.AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwtService
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	r, jwtService := setupAuthRouter(t)

	adminToken, err := jwtService.GenerateToken(1, "admin@caribou.ma", "ADMIN")
	require.NoError(t, err)
	ghostToken, err := jwtService.GenerateToken(99, "ghost@caribou.ma", "ADMIN")
	require.NoError(t, err)
	ticket, err := jwtService.GenerateWSTicket(1, "admin@caribou.ma", "ADMIN")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "нет заголовка", header: "", wantStatus: http.StatusUnauthorized},
		{name: "неверный формат", header: "Token " + adminToken, wantStatus: http.StatusUnauthorized},
		{name: "мусорный токен", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
		{name: "ws-тикет вместо токена", header: "Bearer " + ticket, wantStatus: http.StatusUnauthorized},
		{name: "пользователь удален", header: "Bearer " + ghostToken, wantStatus: http.StatusUnauthorized},
		{name: "валидный токен", header: "Bearer " + adminToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_AdminOnly(t *testing.T) {
	r, jwtService := setupAuthRouter(t)

	tests := []struct {
		name       string
		userID     uint
		wantStatus int
	}{
		{name: "администратор", userID: 1, wantStatus: http.StatusNoContent},
		{name: "аудитор", userID: 10, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// роль в токене не важна: берется из резолвера
			token, err := jwtService.GenerateToken(tt.userID, "u@caribou.ma", "ADMIN")
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodDelete, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestExtractUintParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/audits/:id", ExtractUintParam("id", "auditID"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet("auditID").(uint)})
	})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/audits/12", wantStatus: http.StatusOK},
		{path: "/audits/0", wantStatus: http.StatusBadRequest},
		{path: "/audits/abc", wantStatus: http.StatusBadRequest},
		{path: "/audits/-3", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRateLimiter_WithoutRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(nil)
	r := gin.New()
	r.POST("/login", rl.Limit(LoginRateLimitConfig()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
