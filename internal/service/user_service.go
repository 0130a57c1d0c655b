package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/parkashmi09/entryManagementbackend/internal/core/auth"
	"github.com/parkashmi09/entryManagementbackend/internal/core/cache"
	"github.com/parkashmi09/entryManagementbackend/internal/domain"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
	"github.com/parkashmi09/entryManagementbackend/pkg/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Mobile   string `json:"mobile" binding:"omitempty,len=10,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,max=64"`
	Mobile string `json:"mobile" binding:"omitempty,len=10,numeric"`
}

// UserResponse 出参永不携带密码散列
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile,omitempty"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Profile(ctx context.Context, uid string) (*UserResponse, error)
	UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*UserResponse, error)
	Logout(ctx context.Context, uid string) error
	ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error)
	SetActive(ctx context.Context, id string, active bool) error
}

const profileCacheTTL = 5 * time.Minute

type userService struct {
	repo  domain.UserRepository
	jwter *auth.JWTer
	cache *cache.Cache // 可为 nil（测试/无 redis 场景）
}

func NewUserService(repo domain.UserRepository, jwter *auth.JWTer, c *cache.Cache) UserService {
	return &userService{repo: repo, jwter: jwter, cache: c}
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Mobile:    u.Mobile,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

func profileKey(uid string) string { return "user:profile:" + uid }

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 预检只是快速路径，email 唯一索引才是最终仲裁
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Internal("register failed", err)
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: utils.HashPassword(req.Password),
		Mobile:       req.Mobile,
		Role:         "user",
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, apperr.Internal("register failed", err)
	}
	return s.withTokens(u)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, apperr.Internal("login failed", err)
	}
	if !utils.CheckPassword(req.Password, u.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}
	return s.withTokens(u)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwter.VerifyRefresh(refreshToken)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return nil, apperr.Unauthorized("Refresh token expired")
	case errors.Is(err, auth.ErrTokenMalformed):
		return nil, apperr.Unauthorized("Invalid refresh token")
	case err != nil:
		return nil, apperr.Unauthorized("Authentication failed")
	}

	// 令牌本身有效也要回表：被停用的账号不能续期
	u, err := s.repo.FindByID(ctx, claims.UID)
	if err != nil || !u.IsActive {
		return nil, apperr.Unauthorized("User not found or inactive")
	}
	return s.withTokens(u)
}

func (s *userService) withTokens(u *domain.User) (*AuthResponse, error) {
	pair, err := s.jwter.IssuePair(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, apperr.Internal("issue token failed", err)
	}
	return &AuthResponse{User: mapUser(u), Tokens: pair}, nil
}

func (s *userService) Profile(ctx context.Context, uid string) (*UserResponse, error) {
	load := func(ctx context.Context) (*UserResponse, error) {
		u, err := s.repo.FindByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		out := mapUser(u)
		return &out, nil
	}

	var out *UserResponse
	var err error
	if s.cache != nil {
		out, err = cache.GetOrLoadJSON(s.cache, ctx, profileKey(uid), profileCacheTTL, load)
	} else {
		out, err = load(ctx)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("load profile failed", err)
	}
	return out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*UserResponse, error) {
	u, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("load profile failed", err)
	}
	if req.Name != "" {
		u.Name = strings.TrimSpace(req.Name)
	}
	if req.Mobile != "" {
		u.Mobile = req.Mobile
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("update profile failed", err)
	}
	s.invalidateProfile(ctx, uid)
	out := mapUser(u)
	return &out, nil
}

// Logout 无状态令牌没有服务端吊销，仅失效档案缓存；令牌到期前在客户端丢弃
func (s *userService) Logout(ctx context.Context, uid string) error {
	s.invalidateProfile(ctx, uid)
	return nil
}

func (s *userService) ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, search, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, apperr.Internal("list users failed", err)
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, mapUser(&users[i]))
	}
	return out, total, nil
}

func (s *userService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("update user failed", err)
	}
	s.invalidateProfile(ctx, id)
	return nil
}

func (s *userService) invalidateProfile(ctx context.Context, uid string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, profileKey(uid))
	}
}
