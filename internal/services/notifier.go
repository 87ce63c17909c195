package services

import (
	"context"
	"time"

	"github.com/zaqqye/hotel_backend/internal/models"
)

type EventType string

const (
	EventRoomCreated    EventType = "room.created"
	EventRoomUpdated    EventType = "room.updated"
	EventRoomDeleted    EventType = "room.deleted"
	EventRoomBooked     EventType = "room.booked"
	EventRoomCheckedOut EventType = "room.checked_out"
)

// RoomEvent describes one committed room change. For room.deleted, Room is
// the record as it was before removal.
type RoomEvent struct {
	Type  EventType         `json:"type"`
	Room  models.Room       `json:"room"`
	Stats *models.RoomStats `json:"stats,omitempty"`
	At    time.Time         `json:"at"`
}

// Notifier receives room events after they are persisted. Implementations
// must not block the caller for long.
type Notifier interface {
	NotifyRoom(ctx context.Context, ev RoomEvent)
}

type NotifierFunc func(ctx context.Context, ev RoomEvent)

func (f NotifierFunc) NotifyRoom(ctx context.Context, ev RoomEvent) { f(ctx, ev) }

// Observer is told about transitions and rejected booking attempts; metrics
// implement it.
type Observer interface {
	RoomEvent(t EventType)
	BookingRejected(op, reason string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyRoom(context.Context, RoomEvent) {}

type nopObserver struct{}

func (nopObserver) RoomEvent(EventType) {}
func (nopObserver) BookingRejected(string, string) {}

// Rejection reasons reported to the Observer.
const (
	ReasonNotFound      = "not_found"
	ReasonAlreadyBooked = "already_booked"
	ReasonNotBooked     = "not_booked"
	ReasonForbidden     = "forbidden"
	ReasonInvalid       = "invalid"
	ReasonConflict      = "conflict"
)
