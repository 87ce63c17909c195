// Package store defines the persistence contracts for rooms and users.
//
// A backend only has to provide a Collection per entity; the repositories in
// this package add the entity rules (timestamps, unique keys, stats) on top.
// Every mutating Collection operation must run as one critical section so a
// read-modify-write can never interleave with another writer.
package store

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/zaqqye/hotel_backend/internal/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Schema tells a backend how to identify records of one collection.
type Schema[T any] struct {
	Name string
	ID   func(*T) string
	// Key is a secondary identity that must stay unique across the collection.
	Key func(*T) string
}

// Seeder returns the records a collection starts with when it does not exist yet.
type Seeder[T any] func(ctx context.Context) ([]T, error)

type Collection[T any] interface {
	// All returns every record in insertion order.
	All(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	GetByKey(ctx context.Context, key string) (T, error)
	// Put inserts or replaces by id. ErrDuplicate when another record owns the key.
	Put(ctx context.Context, rec *T) error
	// Update loads the record, applies fn and writes it back atomically.
	// Nothing is written when fn fails; its error is returned unchanged.
	Update(ctx context.Context, id string, fn func(*T) error) (T, error)
	Delete(ctx context.Context, id string) (bool, error)
}

var RoomSchema = Schema[models.Room]{
	Name: "rooms",
	ID:   func(r *models.Room) string { return r.ID },
	Key:  func(r *models.Room) string { return r.RoomNumber },
}

var UserSchema = Schema[models.User]{
	Name: "users",
	ID:   func(u *models.User) string { return u.ID },
	Key:  func(u *models.User) string { return models.EmailKey(u.Email) },
}

// ErrIDChanged is returned by backends when an Update callback rewrites the id.
var ErrIDChanged = errors.New("store: record id is immutable")

// Store bundles the repositories of one backend.
type Store struct {
	Rooms RoomRepository
	Users UserRepository

	closer io.Closer
}

func New(rooms Collection[models.Room], users Collection[models.User], closer io.Closer) *Store {
	return &Store{
		Rooms:  NewRoomRepository(rooms, nil),
		Users:  NewUserRepository(users, nil),
		closer: closer,
	}
}

func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func utcNow() time.Time { return time.Now().UTC() }
