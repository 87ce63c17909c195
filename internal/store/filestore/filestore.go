package filestore

import (
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
)

// Open returns a Store whose rooms and users live in dir/rooms.json and
// dir/users.json.
func Open(dir string, rooms store.Seeder[models.Room], users store.Seeder[models.User]) *store.Store {
	return store.New(
		NewCollection(dir, store.RoomSchema, rooms),
		NewCollection(dir, store.UserSchema, users),
		nil,
	)
}
