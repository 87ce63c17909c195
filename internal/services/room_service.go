package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/validation"
)

const (
	MsgRoomNotFound      = "Room not found"
	MsgRoomNumberTaken   = "Room number already exists"
	MsgRoomAlreadyBooked = "Room is already booked"
	MsgRoomNotBooked     = "Room is not currently booked"
	MsgCheckoutForbidden = "You can only check out from rooms you have booked. Admins can check out any room."
)

// Booking state conflicts. Book and Checkout return these values so callers
// can tell them apart with errors.Is.
var (
	ErrRoomAlreadyBooked = apperror.Conflict(MsgRoomAlreadyBooked)
	ErrRoomNotBooked     = apperror.Conflict(MsgRoomNotBooked)
)

// RoomInput is the full room payload for create and update.
type RoomInput struct {
	RoomNumber  FlexibleString `json:"roomNumber" binding:"required,min=1,max=10"`
	Type        string         `json:"type" binding:"required,roomtype"`
	Price       float64        `json:"price" binding:"required,gt=0"`
	Amenities   []string       `json:"amenities"`
	Description string         `json:"description" binding:"required,min=10,max=500"`
	ImageURL    string         `json:"imageUrl" binding:"omitempty,url"`
}

type BookingInput struct {
	GuestName    string `json:"guestName" binding:"required,min=2,max=100"`
	CheckInDate  string `json:"checkInDate" binding:"required,isodate"`
	CheckOutDate string `json:"checkOutDate" binding:"required,isodate"`
}

// Caller is the authenticated user performing an operation.
type Caller struct {
	ID   string
	Role string
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

type RoomService struct {
	rooms    store.RoomRepository
	notifier Notifier
	observer Observer
	validate *validation.Validator
	now      func() time.Time
}

// NewRoomService wires the room use cases; notifier and observer may be nil.
func NewRoomService(rooms store.RoomRepository, notifier Notifier, observer Observer) *RoomService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &RoomService{
		rooms:    rooms,
		notifier: notifier,
		observer: observer,
		validate: validation.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *RoomService) List(ctx context.Context, f RoomFilter) ([]models.Room, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(rooms), nil
}

func (s *RoomService) Stats(ctx context.Context) (models.RoomStats, error) {
	return s.rooms.Stats(ctx)
}

func (s *RoomService) Get(ctx context.Context, id string) (models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Room{}, apperror.NotFound(MsgRoomNotFound)
	}
	return room, err
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (models.Room, error) {
	if err := s.validate.Validate(in); err != nil {
		return models.Room{}, err
	}
	number := in.RoomNumber.String()
	if _, err := s.rooms.FindByRoomNumber(ctx, number); err == nil {
		return models.Room{}, apperror.Conflict(MsgRoomNumberTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.Room{}, err
	}

	room := models.Room{ID: uuid.NewString()}
	in.applyTo(&room)
	if err := s.rooms.Save(ctx, &room); err != nil {
		return models.Room{}, s.mapStoreErr(err)
	}
	s.publish(ctx, EventRoomCreated, room)
	return room, nil
}

// Update replaces the descriptive fields of a room; booking state is kept.
func (s *RoomService) Update(ctx context.Context, id string, in RoomInput) (models.Room, error) {
	if err := s.validate.Validate(in); err != nil {
		return models.Room{}, err
	}
	room, err := s.rooms.Update(ctx, id, func(r *models.Room) error {
		in.applyTo(r)
		return nil
	})
	if err != nil {
		return models.Room{}, s.mapStoreErr(err)
	}
	s.publish(ctx, EventRoomUpdated, room)
	return room, nil
}

func (s *RoomService) Delete(ctx context.Context, id string) error {
	room, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.rooms.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgRoomNotFound)
	}
	s.publish(ctx, EventRoomDeleted, room)
	return nil
}

// Book moves an available room to Booked for the caller. The availability
// check and the write happen in one repository critical section.
func (s *RoomService) Book(ctx context.Context, id string, caller Caller, in BookingInput) (models.Room, error) {
	booking, err := s.bookingFrom(caller, in)
	if err != nil {
		s.observer.BookingRejected("book", ReasonInvalid)
		return models.Room{}, err
	}
	room, err := s.rooms.Update(ctx, id, func(r *models.Room) error {
		if r.IsBooked {
			return ErrRoomAlreadyBooked
		}
		r.Book(booking)
		return nil
	})
	if err != nil {
		err = s.mapStoreErr(err)
		s.observer.BookingRejected("book", reasonOf(err))
		return models.Room{}, err
	}
	s.publish(ctx, EventRoomBooked, room)
	return room, nil
}

// Checkout releases a booked room. Only the booking guest or an admin may do it.
func (s *RoomService) Checkout(ctx context.Context, id string, caller Caller) (models.Room, error) {
	room, err := s.rooms.Update(ctx, id, func(r *models.Room) error {
		if !r.IsBooked {
			return ErrRoomNotBooked
		}
		if !r.BookedBy(caller.ID) && !caller.IsAdmin() {
			return apperror.Forbidden(MsgCheckoutForbidden)
		}
		r.Release()
		return nil
	})
	if err != nil {
		err = s.mapStoreErr(err)
		s.observer.BookingRejected("checkout", reasonOf(err))
		return models.Room{}, err
	}
	s.publish(ctx, EventRoomCheckedOut, room)
	return room, nil
}

func (s *RoomService) bookingFrom(caller Caller, in BookingInput) (models.Booking, error) {
	if caller.ID == "" {
		return models.Booking{}, apperror.Unauthorized("Authentication required")
	}
	if err := s.validate.Validate(in); err != nil {
		return models.Booking{}, err
	}
	checkIn, err := validation.ParseDate(in.CheckInDate)
	if err != nil {
		return models.Booking{}, apperror.FieldInvalid("checkInDate", "checkInDate must be in ISO 8601 date format")
	}
	checkOut, err := validation.ParseDate(in.CheckOutDate)
	if err != nil {
		return models.Booking{}, apperror.FieldInvalid("checkOutDate", "checkOutDate must be in ISO 8601 date format")
	}
	if !checkOut.After(checkIn) {
		return models.Booking{}, apperror.FieldInvalid("checkOutDate", "checkOutDate must be after checkInDate")
	}
	return models.Booking{
		GuestID:      caller.ID,
		GuestName:    strings.TrimSpace(in.GuestName),
		CheckInDate:  checkIn.Format(models.DateLayout),
		CheckOutDate: checkOut.Format(models.DateLayout),
	}, nil
}

func (in RoomInput) applyTo(r *models.Room) {
	r.RoomNumber = in.RoomNumber.String()
	r.Type = in.Type
	r.Price = in.Price
	r.Amenities = append([]string{}, in.Amenities...)
	r.Description = strings.TrimSpace(in.Description)
	r.ImageURL = nil
	if url := strings.TrimSpace(in.ImageURL); url != "" {
		r.ImageURL = &url
	}
}

func (s *RoomService) mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperror.NotFound(MsgRoomNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return apperror.Conflict(MsgRoomNumberTaken)
	}
	return err
}

func (s *RoomService) publish(ctx context.Context, t EventType, room models.Room) {
	s.observer.RoomEvent(t)
	ev := RoomEvent{Type: t, Room: room, At: s.now()}
	if stats, err := s.rooms.Stats(ctx); err == nil {
		ev.Stats = &stats
	}
	s.notifier.NotifyRoom(ctx, ev)
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrRoomAlreadyBooked):
		return ReasonAlreadyBooked
	case errors.Is(err, ErrRoomNotBooked):
		return ReasonNotBooked
	case apperror.Is(err, apperror.CodeNotFound):
		return ReasonNotFound
	case apperror.Is(err, apperror.CodeForbidden):
		return ReasonForbidden
	case apperror.Is(err, apperror.CodeValidation):
		return ReasonInvalid
	case apperror.Is(err, apperror.CodeConflict):
		return ReasonConflict
	}
	return "error"
}
