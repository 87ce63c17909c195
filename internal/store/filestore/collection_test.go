package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/store/storetest"
)

func TestRoomCollection(t *testing.T) {
	storetest.RunRoomCollection(t, func(t *testing.T) store.Collection[models.Room] {
		return NewCollection(t.TempDir(), store.RoomSchema, nil)
	})
}

func TestUserCollection(t *testing.T) {
	storetest.RunUserCollection(t, func(t *testing.T) store.Collection[models.User] {
		return NewCollection(t.TempDir(), store.UserSchema, nil)
	})
}

func TestSeedsOnFirstAccessOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	calls := 0
	seed := func(context.Context) ([]models.Room, error) {
		calls++
		return []models.Room{storetest.NewRoom("101"), storetest.NewRoom("102")}, nil
	}

	c := NewCollection(dir, store.RoomSchema, seed)
	_, err := os.Stat(c.Path())
	require.True(t, os.IsNotExist(err))

	rooms, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, 1, calls)

	// a fresh collection over the same dir sees the file and does not reseed
	again := NewCollection(dir, store.RoomSchema, seed)
	rooms, err = again.All(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, 1, calls)
}

func TestEmptiedCollectionIsNotReseeded(t *testing.T) {
	ctx := context.Background()
	seed := func(context.Context) ([]models.Room, error) {
		return []models.Room{storetest.NewRoom("101")}, nil
	}
	c := NewCollection(t.TempDir(), store.RoomSchema, seed)
	rooms, err := c.All(ctx)
	require.NoError(t, err)

	deleted, err := c.Delete(ctx, rooms[0].ID)
	require.NoError(t, err)
	require.True(t, deleted)

	rooms, err = c.All(ctx)
	require.NoError(t, err)
	require.Empty(t, rooms)
}

func TestSeedsOnlyNewFiles(t *testing.T) {
	dir := t.TempDir()
	storetest.RunSeedOnce(t, func(t *testing.T, seed store.Seeder[models.Room]) store.Collection[models.Room] {
		return NewCollection(dir, store.RoomSchema, seed)
	})
}

func TestFileIsAJSONArrayOfFullRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := NewCollection(dir, store.RoomSchema, nil)
	r := storetest.NewRoom("101")
	require.NoError(t, c.Put(ctx, &r))

	data, err := os.ReadFile(filepath.Join(dir, "rooms.json"))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	require.Equal(t, "101", raw[0]["roomNumber"])
	require.Equal(t, false, raw[0]["isBooked"])
	require.Contains(t, raw[0], "guestId")
	require.Nil(t, raw[0]["guestId"])

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCorruptFileSurfacesError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rooms.json"), []byte("{not json"), 0o600))

	c := NewCollection(dir, store.RoomSchema, nil)
	_, err := c.All(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode rooms")
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCollection(t.TempDir(), store.RoomSchema, nil)
	_, err := c.All(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRepositoriesOverFiles(t *testing.T) {
	ctx := context.Background()
	s := Open(t.TempDir(), nil, nil)

	r := storetest.NewRoom("301")
	r.CreatedAt = r.CreatedAt.AddDate(0, 0, -1)
	created := r.CreatedAt
	require.NoError(t, s.Rooms.Save(ctx, &r))
	require.True(t, created.Equal(r.CreatedAt))
	require.True(t, r.UpdatedAt.After(created))

	stats, err := s.Rooms.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, models.RoomStats{Total: 1, Available: 1, OccupancyRate: 0}, stats)

	u := storetest.NewUser("Mixed@Case.io")
	require.NoError(t, s.Users.Save(ctx, &u))
	got, err := s.Users.FindByEmail(ctx, "mixed@case.IO")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, s.Close())
}
