package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// UserService 用户管理服务，除个人资料外均为管理员操作
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
	IsActive *bool  `json:"is_active"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateUserRequest 更新用户请求，密码为空时保留原密码
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("密码加密失败: %w", err)
	}
	return string(hashed), nil
}

func verifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*entity.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("用户名已存在: %w", ErrDuplicate)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if req.Email != "" {
		if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("邮箱已存在: %w", ErrDuplicate)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		FullName:       req.FullName,
		IsActive:       true,
		IsAdmin:        req.IsAdmin,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("用户不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]entity.User, int64, error) {
	return s.userRepo.List(ctx, page, pageSize)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if err := s.checkEmailAvailable(ctx, *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.Password != "" {
		hashed, err := hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id, operatorID string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.ID == operatorID {
		return errors.New("不能删除自己")
	}
	return s.userRepo.Delete(ctx, id)
}

// UpdateProfile 更新当前用户的个人资料
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*entity.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.checkEmailAvailable(ctx, *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新个人资料失败: %w", err)
	}
	return user, nil
}

// ChangePassword 修改当前用户密码，需验证原密码
func (s *UserService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !verifyPassword(req.CurrentPassword, user.HashedPassword) {
		return errors.New("当前密码不正确")
	}
	if verifyPassword(req.NewPassword, user.HashedPassword) {
		return errors.New("新密码不能与当前密码相同")
	}
	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("修改密码失败: %w", err)
	}
	return nil
}

func (s *UserService) checkEmailAvailable(ctx context.Context, email, selfID string) error {
	if email == "" {
		return nil
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return errors.New("邮箱已被其他用户使用")
	}
	return nil
}

// EnsureDefaultAdmin 在库中没有 admin 账号时创建一个，用于首次部署
func (s *UserService) EnsureDefaultAdmin(ctx context.Context, password string) error {
	if _, err := s.userRepo.GetByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if password == "" {
		password = "admin123"
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &entity.User{
		Username:       "admin",
		Email:          "admin@dsx-erp.com",
		HashedPassword: hashed,
		FullName:       "系统管理员",
		IsActive:       true,
		IsAdmin:        true,
	}
	return s.userRepo.Create(ctx, admin)
}
