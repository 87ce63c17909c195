package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zaqqye/hotel_backend/internal/config"
	"github.com/zaqqye/hotel_backend/internal/store"
	"github.com/zaqqye/hotel_backend/internal/store/filestore"
	"github.com/zaqqye/hotel_backend/internal/store/gormstore"
	"github.com/zaqqye/hotel_backend/internal/store/sqlitestore"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Open builds the Store selected by cfg.StorageDriver, seeding sample rooms
// and the default administrator into empty collections.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, error) {
	rooms := SampleRooms(time.Now)
	users := DefaultAdmin(cfg, log)

	switch cfg.StorageDriver {
	case "", DriverFile:
		log.Info("storage ready", "driver", DriverFile, "dir", cfg.DataDir)
		return filestore.Open(cfg.DataDir, rooms, users), nil
	case DriverSQLite:
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath, rooms, users)
		if err != nil {
			return nil, err
		}
		log.Info("storage ready", "driver", DriverSQLite, "path", cfg.SQLitePath)
		return s, nil
	case DriverPostgres, DriverMySQL:
		db, err := Connect(cfg, log)
		if err != nil {
			return nil, err
		}
		s, err := gormstore.Open(ctx, db, rooms, users)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		log.Info("storage ready", "driver", cfg.StorageDriver, "host", cfg.DBHost, "database", cfg.DBName)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// Connect opens a gorm connection for the postgres or mysql driver. gorm's
// own logging is routed through slog.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(cfg),
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.StorageDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func gormLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.IsProduction() {
		return logger.Warn
	}
	return logger.Info
}

func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.StorageDriver {
	case DriverPostgres:
		return postgres.Open(PostgresDSN(cfg)), nil
	case DriverMySQL:
		dsn, err := MySQLDSN(cfg)
		if err != nil {
			return nil, err
		}
		return gormmysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("driver %q is not served by gorm", cfg.StorageDriver)
}

// PostgresDSN prefers DATABASE_URL and falls back to the DB_* keys.
func PostgresDSN(cfg *config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, orDefault(cfg.DBUser, "postgres"), orDefault(cfg.DBPassword, "postgres"),
		cfg.DBName, orDefault(cfg.DBPort, "5432"), cfg.DBSSLMode,
	)
}

// MySQLDSN accepts DATABASE_URL either as a go-sql-driver DSN or as a
// mysql:// URL, and falls back to the DB_* keys.
func MySQLDSN(cfg *config.Config) (string, error) {
	raw := strings.TrimSpace(cfg.DatabaseURL)
	var mc *mysql.Config
	switch {
	case strings.HasPrefix(raw, "mysql://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		dbName := strings.TrimPrefix(u.Path, "/")
		if dbName == "" {
			return "", fmt.Errorf("mysql url missing database name")
		}
		port := u.Port()
		if port == "" {
			port = "3306"
		}
		mc = mysql.NewConfig()
		mc.User = u.User.Username()
		mc.Passwd, _ = u.User.Password()
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(u.Hostname(), port)
		mc.DBName = dbName
		mc.Params = map[string]string{"charset": "utf8mb4"}
	case raw != "":
		parsed, err := mysql.ParseDSN(raw)
		if err != nil {
			return "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		mc = parsed
	default:
		mc = mysql.NewConfig()
		mc.User = orDefault(cfg.DBUser, "root")
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.DBHost, orDefault(cfg.DBPort, "3306"))
		mc.DBName = cfg.DBName
		mc.Params = map[string]string{"charset": "utf8mb4"}
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN(), nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
