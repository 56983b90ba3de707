package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/logger"
)

type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=64,username"`
	Email     string `json:"email" validate:"required,max=120,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Password2 string `json:"password2" validate:"required"`
}

type ProfileInput struct {
	Username string `json:"username" validate:"required,max=64,username"`
	AboutMe  string `json:"about_me" validate:"max=140"`
}

// UserService 注册、登录与资料维护
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (*model.User, error)
	Touch(ctx context.Context, id uint64, at time.Time) error
}

type userService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users, now: func() time.Time { return time.Now().UTC() }}
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Password != in.Password2 {
		return nil, ErrPasswordMismatch
	}

	u := &model.User{Username: in.Username, Email: in.Email, LastSeen: s.now()}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user registered", zap.Uint64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidCredential
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, normalizeEmail(email))
}

func (s *userService) UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, id, in.Username, in.AboutMe); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *userService) Touch(ctx context.Context, id uint64, at time.Time) error {
	return s.users.UpdateLastSeen(ctx, id, at)
}
