package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore_api/internal/domain/user/model"
	"bookstore_api/internal/domain/user/repository"
	"bookstore_api/pkg/database"
	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists     = errs.Conflict(errs.ErrUserExists, "email is already registered")
	ErrUserNotFound   = errs.NotFound(errs.ErrUserNotFound, "user not found")
	ErrAuthFailed     = errs.Unauthorized(errs.ErrAuthFailed, "invalid email or password")
	ErrAccountBlocked = errs.Forbidden(errs.ErrAccountBlocked, "account is blocked")
	ErrInvalidStatus  = errs.Validation(errs.ErrInvalidParam, "status must be active or blocked")
	ErrInvalidRole    = errs.Validation(errs.ErrInvalidParam, "unknown role")
)

// RegisterInput 注册输入
type RegisterInput struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required,min=6"`
}

// UpdateInput 部分更新，Status 和 Role 仅管理员可改
type UpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
	Status    *string `json:"status"`
	Role      *string `json:"role"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token    string      `json:"token"`
	ExpireAt time.Time   `json:"expire_at"`
	User     *model.User `json:"user"`
}

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetUsers(ctx context.Context, page, limit int) ([]model.User, int64, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in UpdateInput, asAdmin bool) (*model.User, error)
}

// userService 实现
type userService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register 注册，新用户默认为普通用户
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.GetRoleByName(ctx, utils.RoleUser)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Status:       model.StatusActive,
		RoleID:       role.RoleID,
		Role:         *role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册同一邮箱
		if database.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login 登录
func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthFailed
	}
	if user.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	token, expireAt, err := utils.GenerateToken(user.UserID, user.Role.RoleName)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpireAt: expireAt, User: user}, nil
}

// GetUsers 获取用户列表（分页）
func (s *userService) GetUsers(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	p := utils.Pagination{Page: page, Limit: limit}
	offset, size := p.GetPageOffset()
	return s.repo.GetList(ctx, offset, size)
}

// GetUser 获取单个用户
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateUser 更新用户
func (s *userService) UpdateUser(ctx context.Context, id uint, in UpdateInput, asAdmin bool) (*model.User, error) {
	fields := make(map[string]interface{})
	if in.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		fields["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}

	if asAdmin {
		if in.Status != nil {
			if *in.Status != model.StatusActive && *in.Status != model.StatusBlocked {
				return nil, ErrInvalidStatus
			}
			fields["status"] = *in.Status
		}
		if in.Role != nil {
			role, err := s.repo.GetRoleByName(ctx, *in.Role)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidRole
			}
			if err != nil {
				return nil, err
			}
			fields["role_id"] = role.RoleID
		}
	} else if in.Status != nil || in.Role != nil {
		return nil, errs.Forbidden(errs.ErrNoPermission, "only admins can change status or role")
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			if database.IsUniqueViolation(err) {
				return nil, ErrUserExists
			}
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}
