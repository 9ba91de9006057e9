package service

import (
	"context"
	"testing"

	"bookstore_api/internal/domain/user/model"
	"bookstore_api/internal/pkg/config"
	"bookstore_api/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	config.GlobalConfig.JWT.Secret = "0123456789abcdef0123456789abcdef"
	config.GlobalConfig.JWT.Expire = 1
}

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.UserID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetList(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func createTestUser(id uint, email, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.User{
		UserID:       id,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		Status:       model.StatusActive,
		RoleID:       1,
		Role:         model.Role{RoleID: 1, RoleName: "user"},
	}
}

var ctx = context.Background()

func TestRegister(t *testing.T) {
	input := RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1"}

	t.Run("New user registration success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)

		mockRepo.On("GetByEmail", ctx, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("GetRoleByName", ctx, "user").Return(&model.Role{RoleID: 1, RoleName: "user"}, nil)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := svc.Register(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, uint(1), user.UserID)
		assert.Equal(t, model.StatusActive, user.Status)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		mockRepo.On("GetByEmail", ctx, "ada@example.com").Return(createTestUser(2, "ada@example.com", "x"), nil)

		_, err := svc.Register(ctx, input)

		assert.ErrorIs(t, err, ErrUserExists)
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	})

	t.Run("Concurrent insert hits unique index", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		mockRepo.On("GetByEmail", ctx, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("GetRoleByName", ctx, "user").Return(&model.Role{RoleID: 1, RoleName: "user"}, nil)
		mockRepo.On("Create", ctx, mock.Anything).Return(&pgconn.PgError{Code: "23505"})

		_, err := svc.Register(ctx, input)

		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success returns token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		mockRepo.On("GetByEmail", ctx, "a@b.com").Return(createTestUser(5, "a@b.com", "secret1"), nil)

		result, err := svc.Login(ctx, "a@b.com", "secret1")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, uint(5), result.User.UserID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		mockRepo.On("GetByEmail", ctx, "a@b.com").Return(createTestUser(5, "a@b.com", "secret1"), nil)

		_, err := svc.Login(ctx, "a@b.com", "nope")

		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("Unknown email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		mockRepo.On("GetByEmail", ctx, "x@b.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Login(ctx, "x@b.com", "secret1")

		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("Blocked account", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		user := createTestUser(5, "a@b.com", "secret1")
		user.Status = model.StatusBlocked
		mockRepo.On("GetByEmail", ctx, "a@b.com").Return(user, nil)

		_, err := svc.Login(ctx, "a@b.com", "secret1")

		assert.ErrorIs(t, err, ErrAccountBlocked)
		assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})
}

func TestUpdateUser(t *testing.T) {
	blocked := model.StatusBlocked

	t.Run("Non admin cannot change status", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)

		_, err := svc.UpdateUser(ctx, 5, UpdateInput{Status: &blocked}, false)

		assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Admin blocks user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		user := createTestUser(5, "a@b.com", "x")
		user.Status = model.StatusBlocked

		mockRepo.On("Update", ctx, uint(5), map[string]interface{}{"status": "blocked"}).Return(nil)
		mockRepo.On("GetByID", ctx, uint(5)).Return(user, nil)

		got, err := svc.UpdateUser(ctx, 5, UpdateInput{Status: &blocked}, true)

		require.NoError(t, err)
		assert.True(t, got.IsBlocked())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo)
		name := "Grace"
		mockRepo.On("Update", ctx, uint(9), mock.Anything).Return(gorm.ErrRecordNotFound)

		_, err := svc.UpdateUser(ctx, 9, UpdateInput{FirstName: &name}, false)

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetUsersClampsPaging(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)
	mockRepo.On("GetList", ctx, 0, 100).Return([]model.User{}, int64(0), nil)

	_, _, err := svc.GetUsers(ctx, 0, 1000)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
