// Package sqlitestore keeps each collection in its own SQLite table. Records are
// stored as JSON payloads next to their id and unique key columns, so the table
// layout does not change when the models grow fields.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
)

// Open creates (or reopens) the database at path and seeds new collections.
func Open(ctx context.Context, path string, rooms store.Seeder[models.Room], users store.Seeder[models.User]) (*store.Store, error) {
	if path == "" {
		path = "hotel.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; transactions serialise every read-modify-write
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	roomCol, err := NewCollection(ctx, db, store.RoomSchema, rooms)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	userCol, err := NewCollection(ctx, db, store.UserSchema, users)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.New(roomCol, userCol, db), nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
