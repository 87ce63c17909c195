package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port   string
	AppEnv string

	// Storage
	StorageDriver string // file | sqlite | postgres | mysql
	DataDir       string
	SQLitePath    string
	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string

	// Session
	JWTSecret    string
	JWTExpiresIn string // "7d", "12h", "90m"
	CookieName   string

	CORSOrigins string

	// Seeded administrator
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
	AdminPhone     string

	// Client side (cmd/roomwatch)
	APIBaseURL   string
	PollInterval string
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "5000"),
		AppEnv:         getenv("APP_ENV", "development"),
		StorageDriver:  strings.ToLower(getenv("STORAGE_DRIVER", "file")),
		DataDir:        getenv("DATA_DIR", "data"),
		SQLitePath:     getenv("SQLITE_PATH", "data/hotel.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBPort:         os.Getenv("DB_PORT"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getenv("DB_NAME", "hotel_db"),
		DBSSLMode:      getenv("DB_SSLMODE", "disable"),
		JWTSecret:      getenv("JWT_SECRET", "supersecret_change_me"),
		JWTExpiresIn:   getenv("JWT_EXPIRES_IN", "7d"),
		CookieName:     getenv("COOKIE_NAME", "token"),
		CORSOrigins:    os.Getenv("CORS_ORIGINS"),
		AdminEmail:     getenv("ADMIN_EMAIL", "admin@hotel.com"),
		AdminPassword:  getenv("ADMIN_PASSWORD", "admin123"),
		AdminFirstName: getenv("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:  getenv("ADMIN_LAST_NAME", "User"),
		AdminPhone:     getenv("ADMIN_PHONE", "+1-555-0123"),
		APIBaseURL:     getenv("API_BASE_URL", "http://localhost:5000/api"),
		PollInterval:   getenv("POLL_INTERVAL", "30s"),
	}
}

// IsProduction reports whether error details and stack traces must be hidden.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// TokenTTL parses JWTExpiresIn. A trailing "d" counts days; anything else goes
// through time.ParseDuration. Falls back to 7 days.
func (c *Config) TokenTTL() time.Duration {
	return parseTTL(c.JWTExpiresIn, 7*24*time.Hour)
}

func (c *Config) PollEvery() time.Duration {
	return parseTTL(c.PollInterval, 30*time.Second)
}

// Origins splits CORS_ORIGINS; an empty value means any origin.
func (c *Config) Origins() []string {
	raw := strings.TrimSpace(c.CORSOrigins)
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func parseTTL(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return fallback
	}
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return fallback
		}
		return time.Duration(days) * 24 * time.Hour
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
