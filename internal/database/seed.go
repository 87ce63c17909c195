package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zaqqye/hotel_backend/internal/config"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/utils"
)

// WalkInGuestID marks a seeded booking that was not made through the API.
// Only an administrator can check such a room out.
const WalkInGuestID = "walk-in"

type sampleRoom struct {
	number      string
	roomType    string
	price       float64
	amenities   []string
	description string
	image       string
	booking     *models.Booking
}

var sampleRooms = []sampleRoom{
	{
		number: "101", roomType: models.RoomTypeSingle, price: 99,
		amenities:   []string{"Wi-Fi", "TV", "Air Conditioning"},
		description: "Comfortable single room with city view",
		image:       "https://images.pexels.com/photos/271624/pexels-photo-271624.jpeg",
	},
	{
		number: "102", roomType: models.RoomTypeDouble, price: 149,
		amenities:   []string{"Wi-Fi", "TV", "Air Conditioning", "Mini Bar"},
		description: "Spacious double room with garden view",
		image:       "https://images.pexels.com/photos/164595/pexels-photo-164595.jpeg",
		booking: &models.Booking{
			GuestID:      WalkInGuestID,
			GuestName:    "John Smith",
			CheckInDate:  "2024-01-15",
			CheckOutDate: "2024-01-18",
		},
	},
	{
		number: "201", roomType: models.RoomTypeSuite, price: 299,
		amenities:   []string{"Wi-Fi", "TV", "Air Conditioning", "Mini Bar", "Jacuzzi", "Balcony"},
		description: "Luxury suite with panoramic city view",
		image:       "https://images.pexels.com/photos/1457842/pexels-photo-1457842.jpeg",
	},
	{
		number: "202", roomType: models.RoomTypeDeluxe, price: 399,
		amenities:   []string{"Wi-Fi", "TV", "Air Conditioning", "Mini Bar", "Jacuzzi", "Balcony", "Room Service"},
		description: "Premium deluxe room with ocean view",
		image:       "https://images.pexels.com/photos/1743229/pexels-photo-1743229.jpeg",
	},
}

// SampleRooms seeds the four demo rooms; room 102 starts out booked.
func SampleRooms(now func() time.Time) store.Seeder[models.Room] {
	return func(context.Context) ([]models.Room, error) {
		ts := now().UTC()
		rooms := make([]models.Room, 0, len(sampleRooms))
		for _, s := range sampleRooms {
			image := s.image
			room := models.Room{
				ID:          uuid.NewString(),
				RoomNumber:  s.number,
				Type:        s.roomType,
				Price:       s.price,
				Amenities:   append([]string(nil), s.amenities...),
				Description: s.description,
				ImageURL:    &image,
				CreatedAt:   ts,
				UpdatedAt:   ts,
			}
			if s.booking != nil {
				room.Book(*s.booking)
			}
			rooms = append(rooms, room)
		}
		return rooms, nil
	}
}

// DefaultAdmin seeds the administrator account from ADMIN_* settings.
func DefaultAdmin(cfg *config.Config, log *slog.Logger) store.Seeder[models.User] {
	return func(context.Context) ([]models.User, error) {
		hashed, err := utils.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		admin := models.User{
			ID:        uuid.NewString(),
			Email:     cfg.AdminEmail,
			Password:  hashed,
			FirstName: cfg.AdminFirstName,
			LastName:  cfg.AdminLastName,
			Role:      models.RoleAdmin,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if cfg.AdminPhone != "" {
			phone := cfg.AdminPhone
			admin.Phone = &phone
		}
		log.Info("seeded initial admin", "email", cfg.AdminEmail)
		return []models.User{admin}, nil
	}
}
