package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/coffee-audit-api/internal/domain/entity"
	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
	apperrors "github.com/yourusername/coffee-audit-api/internal/pkg/errors"
	"github.com/yourusername/coffee-audit-api/internal/pkg/optional"
)

func TestUserService_CreateUser(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.CreateUserRequest
		existing *entity.User
		wantErr  error
		wantRole entity.Role
	}{
		{
			name:     "роль по умолчанию VIEWER",
			req:      dto.CreateUserRequest{Email: "New@Caribou.ma", Password: "pass1"},
			wantRole: entity.RoleViewer,
		},
		{
			name:     "роль в нижнем регистре",
			req:      dto.CreateUserRequest{Email: "new@caribou.ma", Password: "pass1", Role: "auditor"},
			wantRole: entity.RoleAuditor,
		},
		{
			name:    "неизвестная роль",
			req:     dto.CreateUserRequest{Email: "new@caribou.ma", Password: "pass1", Role: "OWNER"},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:     "email занят",
			req:      dto.CreateUserRequest{Email: "new@caribou.ma", Password: "pass1"},
			existing: &entity.User{ID: 9, Email: "new@caribou.ma"},
			wantErr:  apperrors.ErrConflict,
		},
		{
			name:    "несуществующая кофейня",
			req:     dto.CreateUserRequest{Email: "new@caribou.ma", Password: "pass1", CoffeeID: uintPtr(77)},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			users := new(MockUserRepository)
			coffees := new(MockCoffeeRepository)
			if tt.existing != nil {
				users.On("GetByEmail", "new@caribou.ma").Return(tt.existing, nil)
			} else {
				users.On("GetByEmail", "new@caribou.ma").Return(nil, apperrors.ErrNotFound)
			}
			users.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)
			coffees.On("GetByID", uint(77)).Return(nil, apperrors.ErrNotFound)
			s := NewUserService(users, coffees)

			// Act
			user, err := s.CreateUser(tt.req)

			// Assert
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				users.AssertNotCalled(t, "Create", mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "new@caribou.ma", user.Email)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.True(t, user.IsActive)
		})
	}
}

func TestUserService_UpdateUser_Partial(t *testing.T) {
	// Arrange
	users := new(MockUserRepository)
	coffees := new(MockCoffeeRepository)
	coffeeID := uint(2)
	users.On("GetByID", uint(4)).Return(&entity.User{
		ID: 4, Email: "viewer@caribou.ma", FullName: "Viewer", Role: entity.RoleViewer, CoffeeID: &coffeeID, IsActive: true,
	}, nil)
	users.On("Update", mock.AnythingOfType("*entity.User")).Return(nil)
	s := NewUserService(users, coffees)

	// Act: null отвязывает кофейню, отсутствующие поля не меняются
	user, err := s.UpdateUser(4, dto.UpdateUserRequest{
		CoffeeID:            optional.Null[uint](),
		ReceiveWeeklyReport: optional.Of(true),
	})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, user.CoffeeID)
	assert.True(t, user.ReceiveWeeklyReport)
	assert.Equal(t, "Viewer", user.FullName)
	assert.Equal(t, entity.RoleViewer, user.Role)
	coffees.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestUserService_UpdateUser_EmailTaken(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByID", uint(4)).Return(&entity.User{ID: 4, Email: "a@caribou.ma"}, nil)
	users.On("GetByEmail", "b@caribou.ma").Return(&entity.User{ID: 5, Email: "b@caribou.ma"}, nil)
	s := NewUserService(users, new(MockCoffeeRepository))

	_, err := s.UpdateUser(4, dto.UpdateUserRequest{Email: optional.Of("B@caribou.ma")})

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	users.AssertNotCalled(t, "Update", mock.Anything)
}

func TestUserService_DeleteUser_RefusesSelf(t *testing.T) {
	users := new(MockUserRepository)
	users.On("Delete", uint(2)).Return(nil)
	s := NewUserService(users, new(MockCoffeeRepository))

	err := s.DeleteUser(entity.Actor{UserID: 1, Role: entity.RoleAdmin}, 1)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	err = s.DeleteUser(entity.Actor{UserID: 1, Role: entity.RoleAdmin}, 2)
	assert.NoError(t, err)
	users.AssertNumberOfCalls(t, "Delete", 1)
}

func TestUserService_ListUsers_NormalizesPage(t *testing.T) {
	users := new(MockUserRepository)
	users.On("List", 20, 0).Return(nil, nil)
	users.On("Count").Return(int64(0), nil)
	s := NewUserService(users, new(MockCoffeeRepository))

	resp, err := s.ListUsers(0, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PerPage)
	assert.NotNil(t, resp.Users)
}
