// Package client is a typed HTTP client for the hotel API plus a polling
// room store for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/services"
)

// APIError is a non-success envelope or an unexpected status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

type Client struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for baseURL (".../api"). A nil hc gets a default
// client with its own cookie jar so the session cookie is kept.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc = &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{base: u.String(), http: hc}, nil
}

// Token is the bearer token from the last register or login.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type request struct {
	method   string
	path     string
	query    url.Values
	body     any
	etag     string
	allow304 bool
}

type response struct {
	status int
	etag   string
	env    envelope
}

func (c *Client) do(ctx context.Context, r request) (response, error) {
	target := c.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return response{}, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if r.etag != "" {
		req.Header.Set("If-None-Match", r.etag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, etag: resp.Header.Get("ETag")}
	if resp.StatusCode == http.StatusNotModified && r.allow304 {
		return out, nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out.env); err != nil {
		return out, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode >= 300 || !out.env.Success {
		msg := out.env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return out, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return out, nil
}

func decode[T any](ctx context.Context, c *Client, r request) (T, error) {
	var out T
	resp, err := c.do(ctx, r)
	if err != nil {
		return out, err
	}
	if len(resp.env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.env.Data, &out); err != nil {
		return out, fmt.Errorf("client: decode %s %s: %w", r.method, r.path, err)
	}
	return out, nil
}

// Session is the data of a register or login response.
type Session struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

func (c *Client) Register(ctx context.Context, in services.RegisterInput) (models.PublicUser, error) {
	s, err := decode[Session](ctx, c, request{method: http.MethodPost, path: "/auth/register", body: in})
	if err != nil {
		return models.PublicUser{}, err
	}
	c.SetToken(s.Token)
	return s.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (models.PublicUser, error) {
	s, err := decode[Session](ctx, c, request{method: http.MethodPost, path: "/auth/login", body: services.LoginInput{Email: email, Password: password}})
	if err != nil {
		return models.PublicUser{}, err
	}
	c.SetToken(s.Token)
	return s.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"})
	c.SetToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (models.PublicUser, error) {
	return decode[models.PublicUser](ctx, c, request{method: http.MethodGet, path: "/auth/me"})
}

func (c *Client) UpdateProfile(ctx context.Context, in services.ProfileInput) (models.PublicUser, error) {
	return decode[models.PublicUser](ctx, c, request{method: http.MethodPut, path: "/auth/profile", body: in})
}

// RoomList is one GET /rooms result. NotModified means the etag still
// matches and Rooms is nil.
type RoomList struct {
	Rooms       []models.Room
	ETag        string
	NotModified bool
}

func (c *Client) ListRooms(ctx context.Context, f services.RoomFilter, etag string) (RoomList, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/rooms", query: f.Query(), etag: etag, allow304: true})
	if err != nil {
		return RoomList{}, err
	}
	if resp.status == http.StatusNotModified {
		return RoomList{ETag: etag, NotModified: true}, nil
	}
	rooms := []models.Room{}
	if err := json.Unmarshal(resp.env.Data, &rooms); err != nil {
		return RoomList{}, fmt.Errorf("client: decode rooms: %w", err)
	}
	return RoomList{Rooms: rooms, ETag: resp.etag}, nil
}

func (c *Client) RoomStats(ctx context.Context) (models.RoomStats, error) {
	return decode[models.RoomStats](ctx, c, request{method: http.MethodGet, path: "/rooms/stats"})
}

func (c *Client) GetRoom(ctx context.Context, id string) (models.Room, error) {
	return decode[models.Room](ctx, c, request{method: http.MethodGet, path: "/rooms/" + url.PathEscape(id)})
}

func (c *Client) CreateRoom(ctx context.Context, in services.RoomInput) (models.Room, error) {
	return decode[models.Room](ctx, c, request{method: http.MethodPost, path: "/rooms", body: in})
}

func (c *Client) UpdateRoom(ctx context.Context, id string, in services.RoomInput) (models.Room, error) {
	return decode[models.Room](ctx, c, request{method: http.MethodPut, path: "/rooms/" + url.PathEscape(id), body: in})
}

func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/rooms/" + url.PathEscape(id)})
	return err
}

func (c *Client) BookRoom(ctx context.Context, id string, in services.BookingInput) (models.Room, error) {
	return decode[models.Room](ctx, c, request{method: http.MethodPost, path: "/rooms/" + url.PathEscape(id) + "/book", body: in})
}

func (c *Client) CheckoutRoom(ctx context.Context, id string) (models.Room, error) {
	return decode[models.Room](ctx, c, request{method: http.MethodPost, path: "/rooms/" + url.PathEscape(id) + "/checkout"})
}

func (c *Client) ListUsers(ctx context.Context, f services.UserFilter) ([]models.PublicUser, error) {
	return decode[[]models.PublicUser](ctx, c, request{method: http.MethodGet, path: "/users", query: f.Query()})
}

func (c *Client) UserStats(ctx context.Context) (models.UserStats, error) {
	return decode[models.UserStats](ctx, c, request{method: http.MethodGet, path: "/users/stats"})
}

func (c *Client) GetUser(ctx context.Context, id string) (models.PublicUser, error) {
	return decode[models.PublicUser](ctx, c, request{method: http.MethodGet, path: "/users/" + url.PathEscape(id)})
}

func (c *Client) CreateUser(ctx context.Context, in services.CreateUserInput) (models.PublicUser, error) {
	return decode[models.PublicUser](ctx, c, request{method: http.MethodPost, path: "/users", body: in})
}

func (c *Client) UpdateUser(ctx context.Context, id string, in services.UpdateUserInput) (models.PublicUser, error) {
	return decode[models.PublicUser](ctx, c, request{method: http.MethodPut, path: "/users/" + url.PathEscape(id), body: in})
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/users/" + url.PathEscape(id)})
	return err
}
