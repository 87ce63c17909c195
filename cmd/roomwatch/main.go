// Command roomwatch polls the hotel API and logs every change to the room
// list and the availability stats.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zaqqye/hotel_backend/internal/client"
	"github.com/zaqqye/hotel_backend/internal/config"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/services"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	base := flag.String("api", cfg.APIBaseURL, "API base url")
	email := flag.String("email", os.Getenv("ROOMWATCH_EMAIL"), "log in as this user (optional)")
	password := flag.String("password", os.Getenv("ROOMWATCH_PASSWORD"), "password for -email")
	roomType := flag.String("type", "", "only rooms of this type")
	available := flag.String("available", "", "true or false")
	minPrice := flag.String("min-price", "", "minimum price")
	maxPrice := flag.String("max-price", "", "maximum price")
	search := flag.String("search", "", "search room number, type and description")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	filter, err := services.ParseRoomFilter(url.Values{
		"type": {*roomType}, "available": {*available}, "minPrice": {*minPrice}, "maxPrice": {*maxPrice}, "search": {*search},
	})
	if err != nil {
		log.Error("invalid filter", "err", err)
		os.Exit(2)
	}

	c, err := client.New(*base, nil)
	if err != nil {
		log.Error("client setup failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *email != "" {
		user, err := c.Login(ctx, *email, *password)
		if err != nil {
			log.Error("login failed", "email", *email, "err", err)
			os.Exit(1)
		}
		log.Info("logged in", "user_id", user.ID, "role", user.Role)
	}

	var previous map[string]models.Room
	store := client.NewRoomStore(c,
		client.WithFilter(filter),
		client.WithInterval(cfg.PollEvery()),
		client.WithNotifier(client.NotifierFunc(func(level client.Level, message string) {
			if level == client.LevelError {
				log.Warn(message)
				return
			}
			log.Info(message)
		})),
		client.WithOnChange(func(s client.Snapshot) {
			current := make(map[string]models.Room, len(s.Rooms))
			for _, r := range s.Rooms {
				current[r.ID] = r
				old, seen := previous[r.ID]
				switch {
				case previous == nil:
				case !seen:
					log.Info("room added", "room", r.RoomNumber, "type", r.Type, "price", r.Price)
				case old.IsBooked != r.IsBooked:
					log.Info("booking changed", "room", r.RoomNumber, "booked", r.IsBooked)
				case !old.UpdatedAt.Equal(r.UpdatedAt):
					log.Info("room updated", "room", r.RoomNumber)
				}
			}
			for id, r := range previous {
				if _, ok := current[id]; !ok {
					log.Info("room removed", "room", r.RoomNumber)
				}
			}
			previous = current
			log.Info("rooms", "shown", len(s.Rooms), "total", s.Stats.Total,
				"available", s.Stats.Available, "booked", s.Stats.Booked, "occupancy", s.Stats.OccupancyRate)
		}),
	)

	log.Info("watching rooms", "api", *base, "every", cfg.PollEvery().String(), "filter", filter.Query().Encode())
	if err := store.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("watch stopped", "err", err)
		os.Exit(1)
	}
}
