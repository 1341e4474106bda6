package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Port     string
	LogLevel string

	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration

	DBDriver    string
	DatabaseURL string

	StorageBackend string
	UploadDir      string
	S3             S3

	CorsAllowedOrigins []string
	MaxUploadBytes     int64
	LoginRateLimit     int
	LoginRateWindow    time.Duration
}

type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function so tests can
// supply their own environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:               env("PORT", "3001"),
		LogLevel:           env("LOG_LEVEL", "info"),
		AdminUsername:      env("ADMIN_USERNAME", ""),
		AdminPasswordHash:  env("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:          env("JWT_SECRET", ""),
		DBDriver:           strings.ToLower(env("DB_DRIVER", "sqlite")),
		StorageBackend:     strings.ToLower(env("STORAGE_BACKEND", "local")),
		UploadDir:          env("UPLOAD_DIR", "server/uploads/diary"),
		CorsAllowedOrigins: splitCSV(env("CORS_ALLOWED_ORIGINS", "*")),
		LoginRateWindow:    time.Minute,
		S3: S3{
			Bucket:    env("S3_BUCKET", ""),
			Region:    env("S3_REGION", "us-east-1"),
			Endpoint:  env("S3_ENDPOINT", ""),
			AccessKey: env("S3_ACCESS_KEY", ""),
			SecretKey: env("S3_SECRET_KEY", ""),
			Prefix:    env("S3_PREFIX", "diary"),
		},
	}

	var errs []error

	ttl, err := time.ParseDuration(env("TOKEN_TTL", "1h"))
	if err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be a positive duration"))
	}
	cfg.TokenTTL = ttl

	maxMB, err := strconv.Atoi(env("MAX_UPLOAD_MB", "20"))
	if err != nil || maxMB <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer"))
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	limit, err := strconv.Atoi(env("LOGIN_RATE_LIMIT", "5"))
	if err != nil || limit <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_LIMIT must be a positive integer"))
	}
	cfg.LoginRateLimit = limit

	switch cfg.DBDriver {
	case "sqlite":
		cfg.DatabaseURL = env("SQLITE_PATH", "server/database.sqlite")
	case "postgres", "pgx":
		cfg.DatabaseURL = env("DATABASE_URL", "")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = postgresURLFromParts(env)
		}
		if cfg.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", cfg.DBDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}

	switch cfg.StorageBackend {
	case "local":
	case "s3":
		if cfg.S3.Bucket == "" {
			errs = append(errs, fmt.Errorf("S3_BUCKET is required for STORAGE_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend))
	}

	var missing []string
	for key, val := range map[string]string{
		"ADMIN_USERNAME":      cfg.AdminUsername,
		"ADMIN_PASSWORD_HASH": cfg.AdminPasswordHash,
		"JWT_SECRET":          cfg.JWTSecret,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errs = append(errs, fmt.Errorf("missing required environment: %s", strings.Join(missing, ", ")))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// postgresURLFromParts keeps the user/password/host/port/dbname variables
// that Supabase hands out working.
func postgresURLFromParts(env func(string, string) string) string {
	host := env("host", "")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(env("user", ""), env("password", "")),
		Host:     host + ":" + env("port", "5432"),
		Path:     "/" + env("dbname", "postgres"),
		RawQuery: "sslmode=require",
	}
	return u.String()
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
