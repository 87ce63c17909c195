package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/hotel_backend/internal/config"
	"github.com/zaqqye/hotel_backend/internal/database"
	"github.com/zaqqye/hotel_backend/internal/metrics"
	"github.com/zaqqye/hotel_backend/internal/models"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		AppEnv:         "test",
		StorageDriver:  database.DriverFile,
		DataDir:        t.TempDir(),
		JWTSecret:      "test-secret",
		JWTExpiresIn:   "7d",
		CookieName:     "token",
		AdminEmail:     "admin@hotel.com",
		AdminPassword:  "admin123",
		AdminFirstName: "Admin",
		AdminLastName:  "User",
	}
	s, err := database.Open(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	r, err := New(Deps{Config: cfg, Store: s, Metrics: metrics.New(prometheus.NewRegistry()), Log: log})
	require.NoError(t, err)
	return &api{t: t, router: r}
}

func (a *api) do(method, path string, body any, token string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

type session struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

func (a *api) register(email, first string) session {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/register", gin.H{
		"email": email, "password": "secret1", "firstName": first, "lastName": "Guest",
	}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, env.Message)
	var s session
	require.NoError(a.t, json.Unmarshal(env.Data, &s))
	return s
}

func (a *api) login(email, password string) session {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, "")
	require.Equal(a.t, http.StatusOK, w.Code, env.Message)
	var s session
	require.NoError(a.t, json.Unmarshal(env.Data, &s))
	return s
}

func (a *api) rooms(query string) []models.Room {
	a.t.Helper()
	w, env := a.do(http.MethodGet, "/api/rooms"+query, nil, "")
	require.Equal(a.t, http.StatusOK, w.Code)
	var rooms []models.Room
	require.NoError(a.t, json.Unmarshal(env.Data, &rooms))
	require.Equal(a.t, len(rooms), *env.Count)
	return rooms
}

func (a *api) roomID(number string) string {
	a.t.Helper()
	for _, r := range a.rooms("") {
		if r.RoomNumber == number {
			return r.ID
		}
	}
	a.t.Fatalf("room %s not found", number)
	return ""
}

func TestBookingScenarioOverHTTP(t *testing.T) {
	a := newAPI(t)
	u1 := a.register("u1@example.com", "Alice")
	u2 := a.register("u2@example.com", "Bobby")
	admin := a.login("admin@hotel.com", "admin123")
	require.Equal(t, models.RoleAdmin, admin.User.Role)

	id := a.roomID("101")
	dates := gin.H{"guestName": "Alice Guest", "checkInDate": "2025-06-01", "checkOutDate": "2025-06-03"}

	w, env := a.do(http.MethodPost, "/api/rooms/"+id+"/book", dates, u1.Token)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	require.Equal(t, "Room booked successfully", env.Message)
	var booked models.Room
	require.NoError(t, json.Unmarshal(env.Data, &booked))
	require.True(t, booked.IsBooked)
	require.Equal(t, u1.User.ID, *booked.GuestID)

	w, env = a.do(http.MethodPost, "/api/rooms/"+id+"/book", dates, u2.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Room is already booked", env.Message)

	w, _ = a.do(http.MethodPost, "/api/rooms/"+id+"/checkout", nil, u2.Token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(http.MethodPost, "/api/rooms/"+id+"/checkout", nil, u1.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Checkout completed successfully", env.Message)
	var released models.Room
	require.NoError(t, json.Unmarshal(env.Data, &released))
	require.False(t, released.IsBooked)
	require.Nil(t, released.GuestID)

	w, env = a.do(http.MethodPost, "/api/rooms/"+id+"/checkout", nil, admin.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Room is not currently booked", env.Message)

	// the seeded walk-in booking can only be released by an admin
	walkIn := a.roomID("102")
	w, _ = a.do(http.MethodPost, "/api/rooms/"+walkIn+"/checkout", nil, u1.Token)
	require.Equal(t, http.StatusForbidden, w.Code)
	w, env = a.do(http.MethodPost, "/api/rooms/"+walkIn+"/checkout", nil, admin.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Admin checkout completed successfully", env.Message)

	w, env = a.do(http.MethodGet, "/api/rooms/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.RoomStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, models.RoomStats{Total: 4, Available: 4, Booked: 0, OccupancyRate: 0}, stats)
}

func TestRoomEndpointsGuards(t *testing.T) {
	a := newAPI(t)
	guest := a.register("guest@example.com", "Grace")
	admin := a.login("admin@hotel.com", "admin123")
	id := a.roomID("201")
	dates := gin.H{"guestName": "Grace", "checkInDate": "2025-06-01", "checkOutDate": "2025-06-02"}

	w, env := a.do(http.MethodPost, "/api/rooms/"+id+"/book", dates, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, env.Success)

	room := gin.H{"roomNumber": 301, "type": "suite", "price": 250, "description": "Corner suite with two balconies"}
	w, _ = a.do(http.MethodPost, "/api/rooms", room, guest.Token)
	require.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do(http.MethodDelete, "/api/rooms/"+id, nil, guest.Token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(http.MethodPost, "/api/rooms", room, admin.Token)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	require.Equal(t, "Room created successfully", env.Message)
	var created models.Room
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "301", created.RoomNumber)
	require.Equal(t, []string{}, created.Amenities)

	w, env = a.do(http.MethodPost, "/api/rooms", room, admin.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Room number already exists", env.Message)

	room["roomNumber"] = "302"
	room["price"] = 0
	w, env = a.do(http.MethodPost, "/api/rooms", room, admin.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "price is required", env.Message)
	room["price"] = -5
	_, env = a.do(http.MethodPost, "/api/rooms", room, admin.Token)
	require.Equal(t, "price must be greater than 0", env.Message)

	w, env = a.do(http.MethodGet, "/api/rooms/not-a-uuid", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Room not found", env.Message)
	w, _ = a.do(http.MethodGet, "/api/rooms/5f0c6f0e-1f7a-4e57-9a9e-3c1f1d3b2a10", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodDelete, "/api/rooms/"+created.ID, nil, admin.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Room deleted successfully", env.Message)
	w, _ = a.do(http.MethodDelete, "/api/rooms/"+created.ID, nil, admin.Token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodPost, "/api/rooms/"+id+"/book", gin.H{"guestName": "Grace", "checkInDate": "2025-06-02", "checkOutDate": "2025-06-01"}, guest.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "checkOutDate must be after checkInDate", env.Message)
}

func TestRoomListFiltersAndETag(t *testing.T) {
	a := newAPI(t)

	require.Len(t, a.rooms(""), 4)
	require.Len(t, a.rooms("?available=true"), 3)
	require.Len(t, a.rooms("?type=suite&available=true"), 1)
	require.Len(t, a.rooms("?minPrice=150&maxPrice=400"), 2)
	require.Len(t, a.rooms("?search=VIEW"), 4)

	w, env := a.do(http.MethodGet, "/api/rooms?minPrice=cheap", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "minPrice must be a number", env.Message)

	w, _ = a.do(http.MethodGet, "/api/rooms", nil, "")
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w, _ = a.do(http.MethodGet, "/api/rooms", nil, "", "If-None-Match", etag)
	require.Equal(t, http.StatusNotModified, w.Code)
	require.Zero(t, w.Body.Len())

	w, _ = a.do(http.MethodGet, "/api/rooms?type=single", nil, "", "If-None-Match", etag)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	a := newAPI(t)
	s := a.register("ada@example.com", "Ada")

	w, env := a.do(http.MethodPost, "/api/auth/register", gin.H{
		"email": "ADA@example.com", "password": "secret1", "firstName": "Ada", "lastName": "Again",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "User with this email already exists", env.Message)

	w, env = a.do(http.MethodPost, "/api/auth/register", gin.H{"email": "x@example.com", "password": "123", "firstName": "Xx", "lastName": "Yy"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "password length must be at least 6 characters long", env.Message)

	w, env = a.do(http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "nope-nope"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid email or password", env.Message)

	w, _ = a.do(http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "secret1"}, "")
	cookie := w.Result().Cookies()
	require.Len(t, cookie, 1)
	require.Equal(t, "token", cookie[0].Name)
	require.True(t, cookie[0].HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie[0].SameSite)
	require.Equal(t, 7*24*3600, cookie[0].MaxAge)

	w, env = a.do(http.MethodGet, "/api/auth/me", nil, s.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, string(env.Data), "password")
	var me models.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, s.User.ID, me.ID)

	w, env = a.do(http.MethodPut, "/api/auth/profile", gin.H{"firstName": "Augusta", "phone": "555-0100"}, s.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Profile updated successfully", env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, "Augusta", me.FirstName)
	require.Equal(t, "Guest", me.LastName)

	w, env = a.do(http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Logout successful", env.Message)
	require.Equal(t, -1, w.Result().Cookies()[0].MaxAge)

	w, _ = a.do(http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserAdminEndpoints(t *testing.T) {
	a := newAPI(t)
	guest := a.register("guest@example.com", "Grace")
	admin := a.login("admin@hotel.com", "admin123")

	w, _ := a.do(http.MethodGet, "/api/users", nil, guest.Token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, env := a.do(http.MethodGet, "/api/users?role=guest", nil, admin.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, *env.Count)
	require.NotContains(t, string(env.Data), "password")

	w, env = a.do(http.MethodPost, "/api/users", gin.H{
		"email": "staff@hotel.com", "password": "secret1", "firstName": "Staff", "lastName": "Member", "role": "admin",
	}, admin.Token)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var staff models.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &staff))
	require.Equal(t, models.RoleAdmin, staff.Role)

	w, env = a.do(http.MethodPut, "/api/users/"+guest.User.ID, gin.H{"isActive": false}, admin.Token)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	w, env = a.do(http.MethodPost, "/api/auth/login", gin.H{"email": "guest@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Account is deactivated. Please contact support.", env.Message)

	w, env = a.do(http.MethodPut, "/api/users/"+guest.User.ID, gin.H{"email": "STAFF@hotel.com"}, admin.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Email already exists", env.Message)

	w, env = a.do(http.MethodGet, "/api/users/stats", nil, admin.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.UserStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, models.UserStats{Total: 3, Active: 2, Inactive: 1, Admins: 2, Guests: 1}, stats)

	w, env = a.do(http.MethodDelete, "/api/users/"+admin.User.ID, nil, admin.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Cannot delete your own account", env.Message)

	w, _ = a.do(http.MethodDelete, "/api/users/"+staff.ID, nil, admin.Token)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = a.do(http.MethodGet, "/api/users/"+staff.ID, nil, admin.Token)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "User not found", env.Message)
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	w, env = a.do(http.MethodGet, "/api/nowhere?x=1", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Not found - /api/nowhere?x=1", env.Message)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `hotel_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
