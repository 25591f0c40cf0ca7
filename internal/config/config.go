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

// Config is the process configuration, read from the environment after an
// optional .env file.
type Config struct {
	Port        int
	DatabaseURL string
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TreeCacheTTL  time.Duration

	MinioEnabled   bool
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	ImageURLExpiry time.Duration

	JWTSecret string
	JWKSURL   string

	NewArrivalDays     int
	NewArrivalInterval time.Duration
}

// Load reads envFiles (".env" when none are given) and then the environment.
// Missing files are not an error; variables already set win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		RedisAddr:      envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MinioEndpoint:  envOrDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: envOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: envOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    envOrDefault("MINIO_BUCKET", "shopcatalog-images"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWKSURL:        os.Getenv("JWKS_URL"),
	}
	cfg.Port = intEnv("PORT", 8080, &errs)
	cfg.RedisDB = intEnv("REDIS_DB", 0, &errs)
	cfg.TreeCacheTTL = durationEnv("TREE_CACHE_TTL", 5*time.Minute, &errs)
	cfg.MinioEnabled = boolEnv("MINIO_ENABLED", true, &errs)
	cfg.MinioUseSSL = boolEnv("MINIO_USE_SSL", false, &errs)
	cfg.ImageURLExpiry = durationEnv("IMAGE_URL_EXPIRY", time.Hour, &errs)
	cfg.NewArrivalDays = intEnv("NEW_ARRIVAL_DAYS", 14, &errs)
	cfg.NewArrivalInterval = durationEnv("NEW_ARRIVAL_INTERVAL", 6*time.Hour, &errs)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the HTTP server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWKS_URL is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.NewArrivalDays < 0 {
		errs = append(errs, errors.New("NEW_ARRIVAL_DAYS cannot be negative"))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return n
}

func boolEnv(key string, def bool, errs *[]error) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return def
	}
	return b
}

func durationEnv(key string, def time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return d
}
