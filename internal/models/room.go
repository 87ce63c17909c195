package models

import (
	"math"
	"time"
)

const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeSuite  = "suite"
	RoomTypeDeluxe = "deluxe"
)

var RoomTypes = []string{RoomTypeSingle, RoomTypeDouble, RoomTypeSuite, RoomTypeDeluxe}

func IsValidRoomType(t string) bool {
	for _, rt := range RoomTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of checkInDate/checkOutDate.
const DateLayout = "2006-01-02"

type Room struct {
	ID           string    `json:"id"`
	RoomNumber   string    `json:"roomNumber"`
	Type         string    `json:"type"`
	Price        float64   `json:"price"`
	IsBooked     bool      `json:"isBooked"`
	GuestName    *string   `json:"guestName"`
	GuestID      *string   `json:"guestId"`
	CheckInDate  *string   `json:"checkInDate"`
	CheckOutDate *string   `json:"checkOutDate"`
	Amenities    []string  `json:"amenities"`
	Description  string    `json:"description"`
	ImageURL     *string   `json:"imageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Booking is the set of fields that exist only while a room is booked.
type Booking struct {
	GuestID      string
	GuestName    string
	CheckInDate  string
	CheckOutDate string
}

// Book moves the room to the Booked state. The caller checks preconditions.
func (r *Room) Book(b Booking) {
	r.IsBooked = true
	r.GuestID = &b.GuestID
	r.GuestName = &b.GuestName
	r.CheckInDate = &b.CheckInDate
	r.CheckOutDate = &b.CheckOutDate
}

// Release moves the room back to Available and clears every booking field.
func (r *Room) Release() {
	r.IsBooked = false
	r.GuestID = nil
	r.GuestName = nil
	r.CheckInDate = nil
	r.CheckOutDate = nil
}

// BookingConsistent reports whether isBooked agrees with the four booking fields.
func (r Room) BookingConsistent() bool {
	set := 0
	for _, f := range []*string{r.GuestName, r.GuestID, r.CheckInDate, r.CheckOutDate} {
		if f != nil {
			set++
		}
	}
	if r.IsBooked {
		return set == 4
	}
	return set == 0
}

// BookedBy reports whether userID holds the current booking.
func (r Room) BookedBy(userID string) bool {
	return r.IsBooked && r.GuestID != nil && *r.GuestID == userID
}

// Normalize fills nil slices so the wire format never carries null amenities.
func (r *Room) Normalize() {
	if r.Amenities == nil {
		r.Amenities = []string{}
	}
}

type RoomStats struct {
	Total         int `json:"total"`
	Available     int `json:"available"`
	Booked        int `json:"booked"`
	OccupancyRate int `json:"occupancyRate"`
}

func ComputeRoomStats(rooms []Room) RoomStats {
	stats := RoomStats{Total: len(rooms)}
	for _, r := range rooms {
		if r.IsBooked {
			stats.Booked++
		}
	}
	stats.Available = stats.Total - stats.Booked
	if stats.Total > 0 {
		stats.OccupancyRate = int(math.Round(float64(stats.Booked) / float64(stats.Total) * 100))
	}
	return stats
}
