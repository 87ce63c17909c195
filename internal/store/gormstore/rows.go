package gormstore

import (
	"time"

	"gorm.io/datatypes"

	"github.com/zaqqye/hotel_backend/internal/models"
)

// RoomRow is the relational shape of models.Room. Seq keeps insertion order;
// UID carries the public id.
type RoomRow struct {
	Seq          uint                        `gorm:"primaryKey;autoIncrement"`
	UID          string                      `gorm:"column:uid;size:36;not null;uniqueIndex"`
	RoomNumber   string                      `gorm:"size:10;not null;uniqueIndex"`
	Type         string                      `gorm:"size:16;not null"`
	Price        float64                     `gorm:"not null"`
	IsBooked     bool                        `gorm:"not null"`
	GuestName    *string                     `gorm:"size:100"`
	GuestID      *string                     `gorm:"size:64"`
	CheckInDate  *string                     `gorm:"size:10"`
	CheckOutDate *string                     `gorm:"size:10"`
	Amenities    datatypes.JSONSlice[string] `gorm:"type:json"`
	Description  string                      `gorm:"size:500"`
	ImageURL     *string                     `gorm:"type:text"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime:false"`
}

func (RoomRow) TableName() string { return "rooms" }

func roomToRow(r *models.Room) RoomRow {
	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return RoomRow{
		UID:          r.ID,
		RoomNumber:   r.RoomNumber,
		Type:         r.Type,
		Price:        r.Price,
		IsBooked:     r.IsBooked,
		GuestName:    r.GuestName,
		GuestID:      r.GuestID,
		CheckInDate:  r.CheckInDate,
		CheckOutDate: r.CheckOutDate,
		Amenities:    datatypes.NewJSONSlice(amenities),
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func roomFromRow(row RoomRow) models.Room {
	return models.Room{
		ID:           row.UID,
		RoomNumber:   row.RoomNumber,
		Type:         row.Type,
		Price:        row.Price,
		IsBooked:     row.IsBooked,
		GuestName:    row.GuestName,
		GuestID:      row.GuestID,
		CheckInDate:  row.CheckInDate,
		CheckOutDate: row.CheckOutDate,
		Amenities:    []string(row.Amenities),
		Description:  row.Description,
		ImageURL:     row.ImageURL,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type UserRow struct {
	Seq       uint       `gorm:"primaryKey;autoIncrement"`
	UID       string     `gorm:"column:uid;size:36;not null;uniqueIndex"`
	Email     string     `gorm:"size:255;not null"`
	EmailKey  string     `gorm:"column:email_key;size:255;not null;uniqueIndex"`
	Password  string     `gorm:"size:255;not null"`
	FirstName string     `gorm:"size:50"`
	LastName  string     `gorm:"size:50"`
	Phone     *string    `gorm:"size:32"`
	Role      string     `gorm:"size:16;not null"`
	IsActive  bool       `gorm:"not null"`
	LastLogin *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (UserRow) TableName() string { return "users" }

func userToRow(u *models.User) UserRow {
	return UserRow{
		UID:       u.ID,
		Email:     u.Email,
		EmailKey:  models.EmailKey(u.Email),
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userFromRow(row UserRow) models.User {
	u := models.User{
		ID:        row.UID,
		Email:     row.Email,
		Password:  row.Password,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     row.Phone,
		Role:      row.Role,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.LastLogin != nil {
		t := row.LastLogin.UTC()
		u.LastLogin = &t
	}
	return u
}

// SeedMark records that a table received its initial data.
type SeedMark struct {
	Name     string    `gorm:"primaryKey;size:64"`
	SeededAt time.Time `gorm:"not null"`
}

func (SeedMark) TableName() string { return "store_seeds" }
