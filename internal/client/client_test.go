package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/hotel_backend/internal/config"
	"github.com/zaqqye/hotel_backend/internal/database"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/routes"
	"github.com/zaqqye/hotel_backend/internal/services"
)

type server struct {
	url         string
	notModified atomic.Int64
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		AppEnv:         "test",
		StorageDriver:  database.DriverFile,
		DataDir:        t.TempDir(),
		JWTSecret:      "test-secret",
		JWTExpiresIn:   "1h",
		CookieName:     "token",
		AdminEmail:     "admin@hotel.com",
		AdminPassword:  "admin123",
		AdminFirstName: "Admin",
		AdminLastName:  "User",
	}
	st, err := database.Open(context.Background(), cfg, log)
	require.NoError(t, err)
	r, err := routes.New(routes.Deps{Config: cfg, Store: st, Log: log})
	require.NoError(t, err)

	s := &server{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		r.ServeHTTP(rec, req)
		if rec.status == http.StatusNotModified {
			s.notModified.Add(1)
		}
	}))
	t.Cleanup(srv.Close)
	s.url = srv.URL + "/api"
	return s
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func newClient(t *testing.T, s *server) *Client {
	t.Helper()
	c, err := New(s.url, nil)
	require.NoError(t, err)
	return c
}

type toasts struct {
	mu   sync.Mutex
	msgs []string
}

func (n *toasts) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, string(level)+": "+message)
}

func (n *toasts) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.msgs) == 0 {
		return ""
	}
	return n.msgs[len(n.msgs)-1]
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("/api", nil)
	require.Error(t, err)
}

func TestClientSessionUsesCookieJar(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, newServer(t))

	user, err := c.Register(ctx, services.RegisterInput{Email: "ada@example.com", Password: "secret1", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	require.Equal(t, models.RoleGuest, user.Role)
	require.NotEmpty(t, c.Token())

	// the cookie alone carries the session
	c.SetToken("")
	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Me(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = c.Login(ctx, "ada@example.com", "wrong-pass")
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestRoomStoreRefreshRevalidates(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	var changes atomic.Int64
	store := NewRoomStore(newClient(t, srv), WithOnChange(func(Snapshot) { changes.Add(1) }))

	require.NoError(t, store.Refresh(ctx))
	snap := store.Snapshot()
	require.Len(t, snap.Rooms, 4)
	require.Equal(t, models.RoomStats{Total: 4, Available: 3, Booked: 1, OccupancyRate: 25}, snap.Stats)
	require.EqualValues(t, 1, changes.Load())

	require.NoError(t, store.Refresh(ctx))
	require.EqualValues(t, 1, srv.notModified.Load())
	require.EqualValues(t, 1, changes.Load())

	// another client changes the data; the next poll sees it
	admin := newClient(t, srv)
	_, err := admin.Login(ctx, "admin@hotel.com", "admin123")
	require.NoError(t, err)
	_, err = admin.CreateRoom(ctx, services.RoomInput{RoomNumber: "301", Type: models.RoomTypeDouble, Price: 180, Description: "Quiet double room facing the courtyard"})
	require.NoError(t, err)

	require.NoError(t, store.Refresh(ctx))
	require.Len(t, store.Snapshot().Rooms, 5)
	require.Equal(t, 5, store.Snapshot().Stats.Total)
	require.EqualValues(t, 2, changes.Load())

	available := true
	require.NoError(t, store.SetFilter(ctx, services.RoomFilter{Type: models.RoomTypeDouble, Available: &available}))
	rooms := store.Snapshot().Rooms
	require.Len(t, rooms, 1)
	require.Equal(t, "301", rooms[0].RoomNumber)
}

func TestRoomStoreMutations(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	guest := newClient(t, srv)
	_, err := guest.Register(ctx, services.RegisterInput{Email: "g@example.com", Password: "secret1", FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)

	n := &toasts{}
	available := true
	store := NewRoomStore(guest, WithNotifier(n), WithFilter(services.RoomFilter{Available: &available}))
	require.NoError(t, store.Refresh(ctx))
	require.Len(t, store.Snapshot().Rooms, 3)
	target := store.Snapshot().Rooms[0]

	booking := services.BookingInput{GuestName: "Grace Hopper", CheckInDate: "2025-07-01", CheckOutDate: "2025-07-04"}
	room, err := store.Book(ctx, target.ID, booking)
	require.NoError(t, err)
	require.True(t, room.IsBooked)
	require.Equal(t, "success: Room booked successfully", n.last())

	snap := store.Snapshot()
	require.Len(t, snap.Rooms, 2, "booked room leaves the available-only view")
	require.Equal(t, 2, snap.Stats.Booked)

	_, err = store.Book(ctx, target.ID, booking)
	require.Error(t, err)
	require.Equal(t, "error: Room is already booked", n.last())
	require.Equal(t, snap.Rooms, store.Snapshot().Rooms)

	_, err = store.Create(ctx, services.RoomInput{RoomNumber: "999", Type: "suite", Price: 10, Description: "Guests may not create rooms"})
	require.Error(t, err)
	require.Contains(t, n.last(), "error: ")

	_, err = store.Checkout(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, store.Snapshot().Rooms, 3)
	require.Equal(t, "success: Checkout completed successfully", n.last())
}

func TestRoomStoreRunPollsUntilCancelled(t *testing.T) {
	srv := newServer(t)
	refreshed := make(chan Snapshot, 1)
	store := NewRoomStore(newClient(t, srv), WithInterval(10*time.Millisecond), WithOnChange(func(s Snapshot) {
		select {
		case refreshed <- s:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx) }()

	select {
	case snap := <-refreshed:
		require.Len(t, snap.Rooms, 4)
	case <-time.After(5 * time.Second):
		t.Fatal("store never refreshed")
	}
	require.Eventually(t, func() bool { return srv.notModified.Load() > 0 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
