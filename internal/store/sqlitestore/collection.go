package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zaqqye/hotel_backend/internal/store"
)

type Collection[T any] struct {
	db     *sql.DB
	schema store.Schema[T]
}

// NewCollection creates the backing table if needed. A collection is seeded
// once, the first time it is opened; the seeded table records that.
func NewCollection[T any](ctx context.Context, db *sql.DB, schema store.Schema[T], seed store.Seeder[T]) (*Collection[T], error) {
	c := &Collection[T]{db: db, schema: schema}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		ukey TEXT NOT NULL UNIQUE,
		payload BLOB NOT NULL
	)`, schema.Name)); err != nil {
		return nil, fmt.Errorf("create %s table: %w", schema.Name, err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS seeded (
		name TEXT PRIMARY KEY,
		seeded_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("create seeded table: %w", err)
	}

	var marked int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seeded WHERE name = ?`, schema.Name).Scan(&marked); err != nil {
		return nil, fmt.Errorf("check %s seed: %w", schema.Name, err)
	}
	if marked > 0 {
		return c, nil
	}
	if seed != nil {
		var count int
		if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.Name)).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", schema.Name, err)
		}
		// tables filled before the seeded table existed keep their data
		if count == 0 {
			records, err := seed(ctx)
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", schema.Name, err)
			}
			for i := range records {
				if err := c.Put(ctx, &records[i]); err != nil {
					return nil, fmt.Errorf("seed %s: %w", schema.Name, err)
				}
			}
		}
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO seeded (name) VALUES (?)`, schema.Name); err != nil {
		return nil, fmt.Errorf("mark %s seeded: %w", schema.Name, err)
	}
	return c, nil
}

func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(`SELECT payload FROM %s ORDER BY seq`, c.schema.Name))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.schema.Name, err)
	}
	defer func() { _ = rows.Close() }()
	records := []T{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.schema.Name, err)
		}
		var rec T
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.schema.Name, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.selectOne(ctx, c.db, "id", id)
}

func (c *Collection[T]) GetByKey(ctx context.Context, key string) (T, error) {
	return c.selectOne(ctx, c.db, "ukey", key)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (c *Collection[T]) selectOne(ctx context.Context, q querier, column, value string) (T, error) {
	var rec T
	var payload []byte
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE %s = ?`, c.schema.Name, column), value).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, store.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("select %s: %w", c.schema.Name, err)
	}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", c.schema.Name, err)
	}
	return rec, nil
}

func (c *Collection[T]) Put(ctx context.Context, rec *T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.schema.Name, err)
	}
	_, err = c.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (id, ukey, payload) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET ukey = excluded.ukey, payload = excluded.payload`, c.schema.Name),
		c.schema.ID(rec), c.schema.Key(rec), payload)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("upsert %s: %w", c.schema.Name, err)
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (result T, retErr error) {
	var zero T
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err := c.selectOne(ctx, tx, "id", id)
	if err != nil {
		return zero, err
	}
	if err := fn(&rec); err != nil {
		return zero, err
	}
	if c.schema.ID(&rec) != id {
		return zero, store.ErrIDChanged
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", c.schema.Name, err)
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET ukey = ?, payload = ? WHERE id = ?`, c.schema.Name),
		c.schema.Key(&rec), payload, id)
	if isUniqueViolation(err) {
		return zero, store.ErrDuplicate
	}
	if err != nil {
		return zero, fmt.Errorf("update %s: %w", c.schema.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := c.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c.schema.Name), id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", c.schema.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", c.schema.Name, err)
	}
	return n > 0, nil
}
