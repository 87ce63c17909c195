// Package storetest holds the behaviour every store backend must share.
// Backend packages call RunRoomCollection/RunUserCollection from their tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
)

// RoomFactory returns an empty room collection.
type RoomFactory func(t *testing.T) store.Collection[models.Room]

// UserFactory returns an empty user collection.
type UserFactory func(t *testing.T) store.Collection[models.User]

func NewRoom(number string) models.Room {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Room{
		ID:          uuid.NewString(),
		RoomNumber:  number,
		Type:        models.RoomTypeDouble,
		Price:       149,
		Amenities:   []string{"Wi-Fi", "TV"},
		Description: "Spacious double room with garden view",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func RunRoomCollection(t *testing.T, newCollection RoomFactory) {
	ctx := context.Background()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		c := newCollection(t)
		r := NewRoom("101")
		require.NoError(t, c.Put(ctx, &r))

		got, err := c.Get(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, r.RoomNumber, got.RoomNumber)
		require.Equal(t, r.Type, got.Type)
		require.Equal(t, r.Price, got.Price)
		require.Equal(t, r.Amenities, got.Amenities)
		require.Equal(t, r.Description, got.Description)
		require.True(t, r.CreatedAt.Equal(got.CreatedAt))

		byKey, err := c.GetByKey(ctx, "101")
		require.NoError(t, err)
		require.Equal(t, r.ID, byKey.ID)
	})

	t.Run("MissingRecords", func(t *testing.T) {
		c := newCollection(t)
		_, err := c.Get(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = c.GetByKey(ctx, "999")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = c.Update(ctx, "nope", func(*models.Room) error { return nil })
		require.ErrorIs(t, err, store.ErrNotFound)
		deleted, err := c.Delete(ctx, "nope")
		require.NoError(t, err)
		require.False(t, deleted)
	})

	t.Run("InsertionOrderAndReplace", func(t *testing.T) {
		c := newCollection(t)
		a, b, d := NewRoom("101"), NewRoom("102"), NewRoom("201")
		for _, r := range []*models.Room{&a, &b, &d} {
			require.NoError(t, c.Put(ctx, r))
		}
		b.Price = 199
		require.NoError(t, c.Put(ctx, &b))

		all, err := c.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, []string{"101", "102", "201"}, []string{all[0].RoomNumber, all[1].RoomNumber, all[2].RoomNumber})
		require.Equal(t, float64(199), all[1].Price)
	})

	t.Run("UniqueKey", func(t *testing.T) {
		c := newCollection(t)
		a, b := NewRoom("101"), NewRoom("102")
		require.NoError(t, c.Put(ctx, &a))
		require.NoError(t, c.Put(ctx, &b))

		dup := NewRoom("101")
		require.ErrorIs(t, c.Put(ctx, &dup), store.ErrDuplicate)

		_, err := c.Update(ctx, b.ID, func(r *models.Room) error {
			r.RoomNumber = "101"
			return nil
		})
		require.ErrorIs(t, err, store.ErrDuplicate)

		got, err := c.Get(ctx, b.ID)
		require.NoError(t, err)
		require.Equal(t, "102", got.RoomNumber)

		all, err := c.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("UpdateCallbackErrorWritesNothing", func(t *testing.T) {
		c := newCollection(t)
		r := NewRoom("101")
		require.NoError(t, c.Put(ctx, &r))

		boom := errors.New("boom")
		_, err := c.Update(ctx, r.ID, func(room *models.Room) error {
			room.Price = 1
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := c.Get(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, float64(149), got.Price)
	})

	t.Run("UpdateKeepsBookingFields", func(t *testing.T) {
		c := newCollection(t)
		r := NewRoom("101")
		require.NoError(t, c.Put(ctx, &r))

		updated, err := c.Update(ctx, r.ID, func(room *models.Room) error {
			room.Book(models.Booking{GuestID: "u1", GuestName: "Ada", CheckInDate: "2025-06-01", CheckOutDate: "2025-06-03"})
			return nil
		})
		require.NoError(t, err)
		require.True(t, updated.IsBooked)

		got, err := c.Get(ctx, r.ID)
		require.NoError(t, err)
		require.True(t, got.BookingConsistent())
		require.Equal(t, "u1", *got.GuestID)
		require.Equal(t, "2025-06-03", *got.CheckOutDate)
	})

	t.Run("Delete", func(t *testing.T) {
		c := newCollection(t)
		a, b := NewRoom("101"), NewRoom("102")
		require.NoError(t, c.Put(ctx, &a))
		require.NoError(t, c.Put(ctx, &b))

		deleted, err := c.Delete(ctx, a.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		all, err := c.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.Equal(t, b.ID, all[0].ID)
	})

	t.Run("ConcurrentUpdatesSerialize", func(t *testing.T) {
		c := newCollection(t)
		r := NewRoom("101")
		require.NoError(t, c.Put(ctx, &r))

		const workers = 8
		errTaken := errors.New("taken")
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := c.Update(ctx, r.ID, func(room *models.Room) error {
					if room.IsBooked {
						return errTaken
					}
					room.Book(models.Booking{GuestID: uuid.NewString(), GuestName: "Guest", CheckInDate: "2025-06-01", CheckOutDate: "2025-06-02"})
					return nil
				})
				results <- err
			}(i)
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			require.ErrorIs(t, err, errTaken)
		}
		require.Equal(t, 1, wins)
	})
}

func NewUser(email string) models.User {
	now := time.Now().UTC().Truncate(time.Second)
	return models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  "$2a$12$notarealhashbutgoodenoughforstorage",
		FirstName: "Grace",
		LastName:  "Hopper",
		Role:      models.RoleGuest,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func RunUserCollection(t *testing.T, newCollection UserFactory) {
	ctx := context.Background()

	t.Run("CaseInsensitiveEmailKey", func(t *testing.T) {
		c := newCollection(t)
		u := NewUser("Grace@Example.com")
		require.NoError(t, c.Put(ctx, &u))

		got, err := c.GetByKey(ctx, models.EmailKey("GRACE@example.COM"))
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "Grace@Example.com", got.Email)
		require.Equal(t, u.Password, got.Password)

		dup := NewUser("grace@example.com")
		require.ErrorIs(t, c.Put(ctx, &dup), store.ErrDuplicate)
	})

	t.Run("NullableFields", func(t *testing.T) {
		c := newCollection(t)
		u := NewUser("ada@example.com")
		require.NoError(t, c.Put(ctx, &u))

		got, err := c.Get(ctx, u.ID)
		require.NoError(t, err)
		require.Nil(t, got.Phone)
		require.Nil(t, got.LastLogin)

		login := time.Now().UTC().Truncate(time.Second)
		phone := "+1-555-0100"
		_, err = c.Update(ctx, u.ID, func(user *models.User) error {
			user.LastLogin = &login
			user.Phone = &phone
			return nil
		})
		require.NoError(t, err)

		got, err = c.Get(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLogin)
		require.True(t, login.Equal(*got.LastLogin))
		require.Equal(t, phone, *got.Phone)
	})
}

// ReopenRooms opens a room collection over the same backing storage each time
// it is called, seeding with seed when that storage is new.
type ReopenRooms func(t *testing.T, seed store.Seeder[models.Room]) store.Collection[models.Room]

// RunSeedOnce checks that seeding happens when the storage is first created
// and never again, even after every record was deleted.
func RunSeedOnce(t *testing.T, open ReopenRooms) {
	ctx := context.Background()
	calls := 0
	seed := func(context.Context) ([]models.Room, error) {
		calls++
		return []models.Room{NewRoom("101")}, nil
	}

	c := open(t, seed)
	rooms, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	deleted, err := c.Delete(ctx, rooms[0].ID)
	require.NoError(t, err)
	require.True(t, deleted)

	c = open(t, seed)
	rooms, err = c.All(ctx)
	require.NoError(t, err)
	require.Empty(t, rooms, "emptied collection must not be reseeded")
	require.Equal(t, 1, calls)
}
