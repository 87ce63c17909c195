package store

import (
	"context"
	"time"

	"github.com/zaqqye/hotel_backend/internal/models"
)

type RoomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (models.Room, error)
	FindByRoomNumber(ctx context.Context, number string) (models.Room, error)
	Save(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, id string, fn func(*models.Room) error) (models.Room, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (models.RoomStats, error)
}

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Save(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, fn func(*models.User) error) (models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (models.UserStats, error)
}

type roomRepository struct {
	c   Collection[models.Room]
	now func() time.Time
}

// NewRoomRepository wraps a backend collection; now defaults to UTC wall time.
func NewRoomRepository(c Collection[models.Room], now func() time.Time) RoomRepository {
	if now == nil {
		now = utcNow
	}
	return &roomRepository{c: c, now: now}
}

func (r *roomRepository) List(ctx context.Context) ([]models.Room, error) {
	rooms, err := r.c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].Normalize()
	}
	return rooms, nil
}

func (r *roomRepository) FindByID(ctx context.Context, id string) (models.Room, error) {
	room, err := r.c.Get(ctx, id)
	room.Normalize()
	return room, err
}

func (r *roomRepository) FindByRoomNumber(ctx context.Context, number string) (models.Room, error) {
	room, err := r.c.GetByKey(ctx, number)
	room.Normalize()
	return room, err
}

func (r *roomRepository) Save(ctx context.Context, room *models.Room) error {
	now := r.now()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	room.Normalize()
	return r.c.Put(ctx, room)
}

func (r *roomRepository) Update(ctx context.Context, id string, fn func(*models.Room) error) (models.Room, error) {
	room, err := r.c.Update(ctx, id, func(room *models.Room) error {
		if err := fn(room); err != nil {
			return err
		}
		room.UpdatedAt = r.now()
		room.Normalize()
		return nil
	})
	room.Normalize()
	return room, err
}

func (r *roomRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.Delete(ctx, id)
}

func (r *roomRepository) Stats(ctx context.Context) (models.RoomStats, error) {
	rooms, err := r.c.All(ctx)
	if err != nil {
		return models.RoomStats{}, err
	}
	return models.ComputeRoomStats(rooms), nil
}

type userRepository struct {
	c   Collection[models.User]
	now func() time.Time
}

func NewUserRepository(c Collection[models.User], now func() time.Time) UserRepository {
	if now == nil {
		now = utcNow
	}
	return &userRepository{c: c, now: now}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	return r.c.All(ctx)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.c.Get(ctx, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.c.GetByKey(ctx, models.EmailKey(email))
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	return r.c.Put(ctx, user)
}

func (r *userRepository) Update(ctx context.Context, id string, fn func(*models.User) error) (models.User, error) {
	return r.c.Update(ctx, id, func(u *models.User) error {
		if err := fn(u); err != nil {
			return err
		}
		u.UpdatedAt = r.now()
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.Delete(ctx, id)
}

func (r *userRepository) Stats(ctx context.Context) (models.UserStats, error) {
	users, err := r.c.All(ctx)
	if err != nil {
		return models.UserStats{}, err
	}
	return models.ComputeUserStats(users), nil
}
