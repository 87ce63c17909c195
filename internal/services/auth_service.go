package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/utils"
	"github.com/zaqqye/hotel_backend/internal/validation"
)

const (
	MsgEmailTaken         = "User with this email already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountDeactivated = "Account is deactivated. Please contact support."
	MsgUserNotFound       = "User not found"
)

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string `json:"lastName" binding:"required,min=2,max=50"`
	Phone     string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileInput fields left empty keep their current value.
type ProfileInput struct {
	FirstName string `json:"firstName" binding:"omitempty,min=2,max=50"`
	LastName  string `json:"lastName" binding:"omitempty,min=2,max=50"`
	Phone     string `json:"phone"`
}

type AuthService struct {
	users    store.UserRepository
	tokens   *TokenManager
	validate *validation.Validator
	hash     func(string) (string, error)
	now      func() time.Time
}

func NewAuthService(users store.UserRepository, tokens *TokenManager) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		validate: validation.New(),
		hash:     utils.HashPassword,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Tokens() *TokenManager { return s.tokens }

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	if err := s.validate.Validate(in); err != nil {
		return models.User{}, "", err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return models.User{}, "", apperror.Conflict(MsgEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, "", err
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, "", err
	}
	user := models.User{
		ID:        uuid.NewString(),
		Email:     strings.TrimSpace(in.Email),
		Password:  hashed,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     optional(in.Phone),
		Role:      models.RoleGuest,
		IsActive:  true,
	}
	if err := s.users.Save(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, "", apperror.Conflict(MsgEmailTaken)
		}
		return models.User{}, "", err
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials, stamps lastLogin and issues a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	if err := s.validate.Validate(in); err != nil {
		return models.User{}, "", err
	}
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, "", apperror.Unauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return models.User{}, "", err
	}
	if !user.IsActive {
		return models.User{}, "", apperror.Unauthorized(MsgAccountDeactivated)
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return models.User{}, "", apperror.Unauthorized(MsgInvalidCredentials)
	}
	user, err = s.users.Update(ctx, user.ID, func(u *models.User) error {
		now := s.now()
		u.LastLogin = &now
		return nil
	})
	if err != nil {
		return models.User{}, "", err
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// CurrentUser resolves a token to an active user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperror.Unauthorized("Invalid token. User not found.")
	}
	if err != nil {
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, apperror.Unauthorized(MsgAccountDeactivated)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (models.User, error) {
	if err := s.validate.Validate(in); err != nil {
		return models.User{}, err
	}
	user, err := s.users.Update(ctx, userID, func(u *models.User) error {
		if v := strings.TrimSpace(in.FirstName); v != "" {
			u.FirstName = v
		}
		if v := strings.TrimSpace(in.LastName); v != "" {
			u.LastName = v
		}
		if p := optional(in.Phone); p != nil {
			u.Phone = p
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperror.NotFound(MsgUserNotFound)
	}
	return user, err
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
