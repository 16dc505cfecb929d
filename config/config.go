// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port            string
	GinMode         string
	DataDir         string
	PublicDir       string
	AdminUsername   string
	AdminPassHash   string
	SessionSecret   string
	SessionTTL      time.Duration
	StoreBackend    string
	DatabaseURL     string
	SQLitePath      string
	CategoriesFile  string
	MaxUploadBytes  int64
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:            "8080",
		DataDir:         "data",
		PublicDir:       "public",
		SessionTTL:      time.Hour,
		StoreBackend:    BackendJSON,
		SQLitePath:      "data/gallery.db",
		MaxUploadBytes:  20 << 20,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads .env (if present) and then overlays environment variables on Default.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() (Config, error) {
	cfg := Default()

	setString(&cfg.Port, "PORT")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.PublicDir, "PUBLIC_DIR")
	setString(&cfg.AdminUsername, "ADMIN_USERNAME")
	setString(&cfg.AdminPassHash, "ADMIN_PASSWORD_HASH")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.CategoriesFile, "CATEGORIES_FILE")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && os.Getenv("DB_HOST") != "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USERNAME"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid SESSION_TTL %q", v)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_UPLOAD_MB %q", v)
		}
		cfg.MaxUploadBytes = int64(mb) << 20
	}

	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	switch cfg.StoreBackend {
	case BackendJSON, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("STORE_BACKEND=postgres requires DATABASE_URL or DB_HOST")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// ValidateServe checks the settings that only the HTTP server needs.
func (c Config) ValidateServe() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET environment variable is required")
	}
	if c.AdminUsername == "" || c.AdminPassHash == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD_HASH environment variables are required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
