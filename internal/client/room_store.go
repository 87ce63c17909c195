package client

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/services"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows short user-facing messages. It is injected so the store
// never reaches for global UI state.
type Notifier interface {
	Notify(level Level, message string)
}

type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

// Snapshot is an immutable view of the store.
type Snapshot struct {
	Rooms     []models.Room
	Stats     models.RoomStats
	UpdatedAt time.Time
}

// RoomStore caches the filtered room list and availability stats. Run keeps
// it fresh by polling; mutations apply the server's answer locally at once.
type RoomStore struct {
	client   *Client
	interval time.Duration
	notifier Notifier
	onChange func(Snapshot)

	mu      sync.RWMutex
	filter  services.RoomFilter
	rooms   []models.Room
	stats   models.RoomStats
	etag    string
	updated time.Time
}

type Option func(*RoomStore)

func WithInterval(d time.Duration) Option {
	return func(s *RoomStore) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithFilter(f services.RoomFilter) Option {
	return func(s *RoomStore) { s.filter = f }
}

func WithNotifier(n Notifier) Option {
	return func(s *RoomStore) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithOnChange registers a callback invoked after every change of the
// cached state. It runs on the goroutine that caused the change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *RoomStore) { s.onChange = fn }
}

const DefaultPollInterval = 30 * time.Second

func NewRoomStore(c *Client, opts ...Option) *RoomStore {
	s := &RoomStore{
		client:   c,
		interval: DefaultPollInterval,
		notifier: nopNotifier{},
		onChange: func(Snapshot) {},
		rooms:    []models.Room{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *RoomStore) snapshotLocked() Snapshot {
	return Snapshot{Rooms: slices.Clone(s.rooms), Stats: s.stats, UpdatedAt: s.updated}
}

func (s *RoomStore) Filter() services.RoomFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter replaces the filter and refetches.
func (s *RoomStore) SetFilter(ctx context.Context, f services.RoomFilter) error {
	s.mu.Lock()
	s.filter = f
	s.etag = ""
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh refetches the room list (conditionally) and the stats.
func (s *RoomStore) Refresh(ctx context.Context) error {
	s.mu.RLock()
	filter, etag := s.filter, s.etag
	s.mu.RUnlock()

	list, err := s.client.ListRooms(ctx, filter, etag)
	if err != nil {
		return err
	}
	stats, err := s.client.RoomStats(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	changed := stats != s.stats
	if !list.NotModified {
		s.rooms = list.Rooms
		s.etag = list.ETag
		changed = true
	}
	s.stats = stats
	if changed {
		s.updated = time.Now()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.onChange(snap)
	}
	return nil
}

// Run refreshes immediately and then on every tick until ctx ends. Poll
// failures are reported to the notifier and do not stop the loop.
func (s *RoomStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.notifier.Notify(LevelError, errorMessage(err, "Failed to fetch rooms"))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *RoomStore) Create(ctx context.Context, in services.RoomInput) (models.Room, error) {
	room, err := s.client.CreateRoom(ctx, in)
	if err != nil {
		return models.Room{}, s.fail(err, "Failed to create room")
	}
	s.apply(ctx, room, false)
	s.notifier.Notify(LevelSuccess, "Room created successfully")
	return room, nil
}

func (s *RoomStore) Update(ctx context.Context, id string, in services.RoomInput) (models.Room, error) {
	room, err := s.client.UpdateRoom(ctx, id, in)
	if err != nil {
		return models.Room{}, s.fail(err, "Failed to update room")
	}
	s.apply(ctx, room, false)
	s.notifier.Notify(LevelSuccess, "Room updated successfully")
	return room, nil
}

func (s *RoomStore) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteRoom(ctx, id); err != nil {
		return s.fail(err, "Failed to delete room")
	}
	s.apply(ctx, models.Room{ID: id}, true)
	s.notifier.Notify(LevelSuccess, "Room deleted successfully")
	return nil
}

func (s *RoomStore) Book(ctx context.Context, id string, in services.BookingInput) (models.Room, error) {
	room, err := s.client.BookRoom(ctx, id, in)
	if err != nil {
		return models.Room{}, s.fail(err, "Failed to book room")
	}
	s.apply(ctx, room, false)
	s.notifier.Notify(LevelSuccess, "Room booked successfully")
	return room, nil
}

func (s *RoomStore) Checkout(ctx context.Context, id string) (models.Room, error) {
	room, err := s.client.CheckoutRoom(ctx, id)
	if err != nil {
		return models.Room{}, s.fail(err, "Failed to checkout")
	}
	s.apply(ctx, room, false)
	s.notifier.Notify(LevelSuccess, "Checkout completed successfully")
	return room, nil
}

// apply merges a server-confirmed record into the cached list, keeping the
// list consistent with the active filter, then refreshes the stats.
func (s *RoomStore) apply(ctx context.Context, room models.Room, deleted bool) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.rooms, func(r models.Room) bool { return r.ID == room.ID })
	keep := !deleted && s.filter.Match(room)
	switch {
	case idx >= 0 && keep:
		s.rooms[idx] = room
	case idx >= 0:
		s.rooms = slices.Delete(s.rooms, idx, idx+1)
	case keep:
		s.rooms = append(s.rooms, room)
	}
	// the local list no longer matches what the server hashed
	s.etag = ""
	s.updated = time.Now()
	s.mu.Unlock()

	if stats, err := s.client.RoomStats(ctx); err == nil {
		s.mu.Lock()
		s.stats = stats
		s.mu.Unlock()
	}
	s.onChange(s.Snapshot())
}

func (s *RoomStore) fail(err error, fallback string) error {
	s.notifier.Notify(LevelError, errorMessage(err, fallback))
	return err
}

func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
