// Package gormstore keeps rooms and users in relational tables through gorm.
// It serves both the postgres and mysql drivers.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
)

const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&RoomRow{}, &UserRow{}, &SeedMark{})
}

func NewRoomCollection(db *gorm.DB) *Collection[models.Room, RoomRow] {
	return &Collection[models.Room, RoomRow]{
		db:        db,
		schema:    store.RoomSchema,
		keyColumn: "room_number",
		toRow:     roomToRow,
		fromRow:   roomFromRow,
	}
}

func NewUserCollection(db *gorm.DB) *Collection[models.User, UserRow] {
	return &Collection[models.User, UserRow]{
		db:        db,
		schema:    store.UserSchema,
		keyColumn: "email_key",
		toRow:     userToRow,
		fromRow:   userFromRow,
	}
}

// Open migrates the schema, seeds new tables and returns the Store.
// Closing the Store closes the underlying connection pool.
func Open(ctx context.Context, db *gorm.DB, rooms store.Seeder[models.Room], users store.Seeder[models.User]) (*store.Store, error) {
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	roomCol := NewRoomCollection(db)
	if err := seed(ctx, roomCol, rooms); err != nil {
		return nil, err
	}
	userCol := NewUserCollection(db)
	if err := seed(ctx, userCol, users); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return store.New(roomCol, userCol, sqlDB), nil
}

// seed fills a table the first time it is opened. The store_seeds marker keeps
// an emptied table from being refilled on the next start.
func seed[T, R any](ctx context.Context, c *Collection[T, R], seeder store.Seeder[T]) error {
	db := c.db.WithContext(ctx)
	var marked int64
	if err := db.Model(&SeedMark{}).Where("name = ?", c.schema.Name).Count(&marked).Error; err != nil {
		return fmt.Errorf("check %s seed: %w", c.schema.Name, err)
	}
	if marked > 0 {
		return nil
	}
	if seeder != nil {
		n, err := c.count(ctx)
		if err != nil {
			return fmt.Errorf("count %s: %w", c.schema.Name, err)
		}
		// tables filled before store_seeds existed keep their data
		if n == 0 {
			records, err := seeder(ctx)
			if err != nil {
				return fmt.Errorf("seed %s: %w", c.schema.Name, err)
			}
			for i := range records {
				if err := c.Put(ctx, &records[i]); err != nil {
					return fmt.Errorf("seed %s: %w", c.schema.Name, err)
				}
			}
		}
	}
	mark := SeedMark{Name: c.schema.Name, SeededAt: time.Now().UTC()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&mark).Error; err != nil {
		return fmt.Errorf("mark %s seeded: %w", c.schema.Name, err)
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}
