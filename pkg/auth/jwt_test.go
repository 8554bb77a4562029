package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestNewJWTService_ShortSecret(t *testing.T) {
	_, err := NewJWTService("short", 24, 60)
	assert.Error(t, err)
}

func TestJWTService_GenerateAndParse(t *testing.T) {
	// Arrange
	svc, err := NewJWTService(testSecret, 24, 60)
	require.NoError(t, err)

	// Act
	token, err := svc.GenerateToken(7, "auditor@caribou.ma", "AUDITOR")
	require.NoError(t, err)
	claims, err := svc.ParseToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "AUDITOR", claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, 24*time.Hour, svc.Expiration())
}

func TestJWTService_Expired(t *testing.T) {
	svc, err := NewJWTService(testSecret, 1, 60)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.GenerateToken(1, "a@b.c", "ADMIN")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuerSvc, _ := NewJWTService(testSecret, 1, 60)
	otherSvc, _ := NewJWTService("another-secret-9876543210", 1, 60)

	token, err := issuerSvc.GenerateToken(1, "a@b.c", "ADMIN")
	require.NoError(t, err)

	_, err = otherSvc.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTService_Malformed(t *testing.T) {
	svc, _ := NewJWTService(testSecret, 1, 60)

	_, err := svc.ParseToken("not-a-token")

	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestJWTService_WSTicketSeparation(t *testing.T) {
	svc, _ := NewJWTService(testSecret, 1, 30)

	ticket, err := svc.GenerateWSTicket(3, "a@b.c", "ADMIN")
	require.NoError(t, err)
	access, err := svc.GenerateToken(3, "a@b.c", "ADMIN")
	require.NoError(t, err)

	claims, err := svc.ParseWSTicket(ticket)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)

	_, err = svc.ParseToken(ticket)
	assert.ErrorIs(t, err, ErrWrongUsage, "Тикет нельзя использовать как access-токен")
	_, err = svc.ParseWSTicket(access)
	assert.ErrorIs(t, err, ErrWrongUsage)
}
