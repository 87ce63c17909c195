// Package filestore keeps each collection as one pretty-printed JSON array on
// disk. Every operation reads the whole file and every mutation rewrites it,
// all under a per-collection mutex.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/zaqqye/hotel_backend/internal/store"
)

type Collection[T any] struct {
	mu     sync.Mutex
	path   string
	schema store.Schema[T]
	seed   store.Seeder[T]
}

// NewCollection stores records in <dir>/<schema.Name>.json. The file is
// created from seed on first access when it does not exist.
func NewCollection[T any](dir string, schema store.Schema[T], seed store.Seeder[T]) *Collection[T] {
	return &Collection[T]{
		path:   filepath.Join(dir, schema.Name+".json"),
		schema: schema,
		seed:   seed,
	}
}

func (c *Collection[T]) Path() string { return c.path }

func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.find(ctx, func(rec *T) bool { return c.schema.ID(rec) == id })
}

func (c *Collection[T]) GetByKey(ctx context.Context, key string) (T, error) {
	return c.find(ctx, func(rec *T) bool { return c.schema.Key(rec) == key })
}

func (c *Collection[T]) find(ctx context.Context, match func(*T) bool) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	records, err := c.load(ctx)
	if err != nil {
		return zero, err
	}
	for i := range records {
		if match(&records[i]) {
			return records[i], nil
		}
	}
	return zero, store.ErrNotFound
}

func (c *Collection[T]) Put(ctx context.Context, rec *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	id := c.schema.ID(rec)
	if c.keyTaken(records, id, c.schema.Key(rec)) {
		return store.ErrDuplicate
	}
	if idx := c.indexOf(records, id); idx >= 0 {
		records[idx] = *rec
	} else {
		records = append(records, *rec)
	}
	return c.write(records)
}

func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	records, err := c.load(ctx)
	if err != nil {
		return zero, err
	}
	idx := c.indexOf(records, id)
	if idx < 0 {
		return zero, store.ErrNotFound
	}
	rec := records[idx]
	if err := fn(&rec); err != nil {
		return zero, err
	}
	if c.schema.ID(&rec) != id {
		return zero, store.ErrIDChanged
	}
	if c.keyTaken(records, id, c.schema.Key(&rec)) {
		return zero, store.ErrDuplicate
	}
	records[idx] = rec
	if err := c.write(records); err != nil {
		return zero, err
	}
	return rec, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	kept := records[:0]
	for i := range records {
		if c.schema.ID(&records[i]) != id {
			kept = append(kept, records[i])
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := c.write(kept); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Collection[T]) indexOf(records []T, id string) int {
	for i := range records {
		if c.schema.ID(&records[i]) == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) keyTaken(records []T, id, key string) bool {
	if key == "" {
		return false
	}
	for i := range records {
		if c.schema.Key(&records[i]) == key && c.schema.ID(&records[i]) != id {
			return true
		}
	}
	return false
}

// load must be called with mu held.
func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return c.initialize(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.schema.Name, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.schema.Name, err)
	}
	return records, nil
}

func (c *Collection[T]) initialize(ctx context.Context) ([]T, error) {
	records := []T{}
	if c.seed != nil {
		seeded, err := c.seed(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", c.schema.Name, err)
		}
		records = append(records, seeded...)
	}
	if err := c.write(records); err != nil {
		return nil, err
	}
	return records, nil
}

// write replaces the file through a temp file and rename.
func (c *Collection[T]) write(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.schema.Name, err)
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+c.schema.Name+"-*.json")
	if err != nil {
		return fmt.Errorf("write %s: %w", c.schema.Name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c.schema.Name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", c.schema.Name, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", c.schema.Name, err)
	}
	return nil
}
