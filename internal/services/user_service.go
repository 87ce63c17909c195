package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/utils"
	"github.com/zaqqye/hotel_backend/internal/validation"
)

const (
	MsgEmailExists      = "Email already exists"
	MsgCannotDeleteSelf = "Cannot delete your own account"
)

type CreateUserInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string `json:"lastName" binding:"required,min=2,max=50"`
	Phone     string `json:"phone"`
	Role      string `json:"role" binding:"omitempty,role"`
	IsActive  *bool  `json:"isActive"`
}

// UpdateUserInput is a partial update; nil fields are left alone.
type UpdateUserInput struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
	FirstName *string `json:"firstName" binding:"omitempty,min=2,max=50"`
	LastName  *string `json:"lastName" binding:"omitempty,min=2,max=50"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role" binding:"omitempty,role"`
	IsActive  *bool   `json:"isActive"`
}

type UserService struct {
	users    store.UserRepository
	validate *validation.Validator
	hash     func(string) (string, error)
}

func NewUserService(users store.UserRepository) *UserService {
	return &UserService{users: users, validate: validation.New(), hash: utils.HashPassword}
}

func (s *UserService) List(ctx context.Context, f UserFilter) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserService) Stats(ctx context.Context) (models.UserStats, error) {
	return s.users.Stats(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperror.NotFound(MsgUserNotFound)
	}
	return user, err
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (models.User, error) {
	if err := s.validate.Validate(in); err != nil {
		return models.User{}, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return models.User{}, apperror.Conflict(MsgEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
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
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := s.users.Save(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, apperror.Conflict(MsgEmailTaken)
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (models.User, error) {
	if err := s.validate.Validate(in); err != nil {
		return models.User{}, err
	}
	var hashed string
	if in.Password != nil {
		h, err := s.hash(*in.Password)
		if err != nil {
			return models.User{}, err
		}
		hashed = h
	}
	user, err := s.users.Update(ctx, id, func(u *models.User) error {
		if in.Email != nil {
			u.Email = strings.TrimSpace(*in.Email)
		}
		if hashed != "" {
			u.Password = hashed
		}
		if in.FirstName != nil {
			u.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			u.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.Phone != nil {
			u.Phone = optional(*in.Phone)
		}
		if in.Role != nil {
			u.Role = *in.Role
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.User{}, apperror.NotFound(MsgUserNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return models.User{}, apperror.Conflict(MsgEmailExists)
	}
	return user, err
}

// Delete removes a user; an admin cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperror.Validation(MsgCannotDeleteSelf)
	}
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgUserNotFound)
	}
	return nil
}
