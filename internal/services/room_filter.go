package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
)

// RoomFilter narrows a room listing. Zero-valued fields do not filter; all
// set fields must match.
type RoomFilter struct {
	Type      string
	Available *bool
	MinPrice  *float64
	MaxPrice  *float64
	Search    string
}

// ParseRoomFilter reads type, available, minPrice, maxPrice and search from
// query values. Empty values are ignored.
func ParseRoomFilter(q url.Values) (RoomFilter, error) {
	f := RoomFilter{
		Type:   strings.TrimSpace(q.Get("type")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if raw := strings.TrimSpace(q.Get("available")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperror.FieldInvalid("available", "available must be a boolean")
		}
		f.Available = &v
	}
	var err error
	if f.MinPrice, err = parsePrice(q, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q, "maxPrice"); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.FieldInvalid(key, key+" must be a number")
	}
	return &v, nil
}

// Query is the inverse of ParseRoomFilter.
func (f RoomFilter) Query() url.Values {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Available != nil {
		q.Set("available", strconv.FormatBool(*f.Available))
	}
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func (f RoomFilter) Match(r models.Room) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Available != nil && r.IsBooked == *f.Available {
		return false
	}
	if f.MinPrice != nil && r.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && r.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.RoomNumber), needle) &&
			!strings.Contains(strings.ToLower(r.Type), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			return false
		}
	}
	return true
}

// Apply keeps matching rooms in their original order.
func (f RoomFilter) Apply(rooms []models.Room) []models.Room {
	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role   string
	Active *bool
	Search string
}

func ParseUserFilter(q url.Values) (UserFilter, error) {
	f := UserFilter{
		Role:   strings.TrimSpace(q.Get("role")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if raw := strings.TrimSpace(q.Get("active")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperror.FieldInvalid("active", "active must be a boolean")
		}
		f.Active = &v
	}
	return f, nil
}

func (f UserFilter) Match(u models.User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Active != nil && u.IsActive != *f.Active {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.FirstName), needle) &&
			!strings.Contains(strings.ToLower(u.LastName), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			return false
		}
	}
	return true
}

func (f UserFilter) Query() url.Values {
	q := url.Values{}
	if f.Role != "" {
		q.Set("role", f.Role)
	}
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}
