package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zaqqye/hotel_backend/internal/store"
)

// Collection adapts a gorm table of rows R to store.Collection[T].
type Collection[T, R any] struct {
	db        *gorm.DB
	schema    store.Schema[T]
	keyColumn string
	toRow     func(*T) R
	fromRow   func(R) T
}

func (c *Collection[T, R]) All(ctx context.Context) ([]T, error) {
	var rows []R
	if err := c.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", c.schema.Name, err)
	}
	records := make([]T, 0, len(rows))
	for _, row := range rows {
		records = append(records, c.fromRow(row))
	}
	return records, nil
}

func (c *Collection[T, R]) Get(ctx context.Context, id string) (T, error) {
	return c.take(c.db.WithContext(ctx), "uid", id)
}

func (c *Collection[T, R]) GetByKey(ctx context.Context, key string) (T, error) {
	return c.take(c.db.WithContext(ctx), c.keyColumn, key)
}

func (c *Collection[T, R]) take(db *gorm.DB, column, value string) (T, error) {
	var zero T
	var row R
	err := db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, store.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("select %s: %w", c.schema.Name, err)
	}
	return c.fromRow(row), nil
}

func (c *Collection[T, R]) Put(ctx context.Context, rec *T) error {
	row := c.toRow(rec)
	id := c.schema.ID(rec)
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(new(R)).Where("uid = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return tx.Create(&row).Error
		}
		return c.overwrite(tx, id, &row)
	})
	return c.mapError("upsert", err)
}

func (c *Collection[T, R]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var result T
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := c.take(tx.Clauses(clause.Locking{Strength: "UPDATE"}), "uid", id)
		if err != nil {
			return err
		}
		if err := fn(&rec); err != nil {
			return err
		}
		if c.schema.ID(&rec) != id {
			return store.ErrIDChanged
		}
		row := c.toRow(&rec)
		if err := c.overwrite(tx, id, &row); err != nil {
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		var zero T
		return zero, c.mapError("update", err)
	}
	return result, nil
}

// overwrite writes every column of row except the sequence onto the record with uid id.
func (c *Collection[T, R]) overwrite(tx *gorm.DB, id string, row *R) error {
	return tx.Model(new(R)).Where("uid = ?", id).Select("*").Omit("seq").Updates(row).Error
}

func (c *Collection[T, R]) Delete(ctx context.Context, id string) (bool, error) {
	res := c.db.WithContext(ctx).Where("uid = ?", id).Delete(new(R))
	if res.Error != nil {
		return false, fmt.Errorf("delete %s: %w", c.schema.Name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *Collection[T, R]) count(ctx context.Context) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(new(R)).Count(&n).Error
	return n, err
}

// mapError translates unique violations. Store sentinels and callback errors
// pass through unchanged.
func (c *Collection[T, R]) mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		return store.ErrDuplicate
	case errors.Is(err, gorm.ErrInvalidTransaction), errors.Is(err, gorm.ErrInvalidDB):
		return fmt.Errorf("%s %s: %w", op, c.schema.Name, err)
	}
	return err
}
