// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bookshelf_backend/internal/platform/validation"
)

// Config holds everything the server needs at startup.
type Config struct {
	Env      string `env:"APP_ENV" binding:"oneof=development production test"`
	LogLevel string `env:"LOG_LEVEL" binding:"oneof=debug info warn error"`
	Port     int    `env:"PORT" binding:"min=1,max=65535"`

	DatabaseURL      string        `env:"DATABASE_URL" binding:"required"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT"`
	RunMigrations    bool          `env:"RUN_MIGRATIONS"`

	JWTSecret string `env:"JWT_SECRET" binding:"required,min=8"`

	// Redis is optional; an empty address disables the book list cache.
	RedisAddr     string        `env:"REDIS_ADDR" binding:"omitempty,hostname_port"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" binding:"min=0"`
	CacheTTL      time.Duration `env:"CACHE_TTL"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (*Config, error) {
	// .envがなくても環境変数だけで動作する
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary key lookup.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []string
	getInt := func(key string, def int) int {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: must be an integer", key))
			return def
		}
		return n
	}
	getBool := func(key string, def bool) bool {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: must be a boolean", key))
			return def
		}
		return b
	}
	getDuration := func(key string, def time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("%s: must be a positive duration", key))
			return def
		}
		return d
	}

	cfg := &Config{
		Env:                get("APP_ENV", "development"),
		LogLevel:           strings.ToLower(get("LOG_LEVEL", "info")),
		Port:               getInt("PORT", 3000),
		DatabaseURL:        get("DATABASE_URL", ""),
		DBConnectTimeout:   getDuration("DB_CONNECT_TIMEOUT", 60*time.Second),
		RunMigrations:      getBool("RUN_MIGRATIONS", false),
		JWTSecret:          get("JWT_SECRET", ""),
		RedisAddr:          get("REDIS_ADDR", ""),
		RedisPassword:      get("REDIS_PASSWORD", ""),
		RedisDB:            getInt("REDIS_DB", 0),
		CacheTTL:           getDuration("CACHE_TTL", 5*time.Minute),
		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "")),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := validation.New().ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
