package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Kova"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host          string        `envconfig:"DB_HOST" default:"localhost"`
		Port          int           `envconfig:"DB_PORT" default:"5432"`
		User          string        `envconfig:"DB_USER" default:"postgres"`
		Password      string        `envconfig:"DB_PASSWORD" default:""`
		Name          string        `envconfig:"DB_NAME" default:"kova"`
		SlowThreshold time.Duration `envconfig:"DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"AUTH_JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}

	// Redis backs the share endpoint rate limiter. Empty Addr disables it.
	Redis struct {
		Addr        string        `envconfig:"REDIS_ADDR"`
		Password    string        `envconfig:"REDIS_PASSWORD"`
		DB          int           `envconfig:"REDIS_DB" default:"0"`
		ShareLimit  int           `envconfig:"SHARE_RATE_LIMIT" default:"60"`
		ShareWindow time.Duration `envconfig:"SHARE_RATE_WINDOW" default:"1m"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}

	// TUI acts on behalf of a fixed principal.
	TUI struct {
		UserID string `envconfig:"TUI_USER_ID"`
		FirmID string `envconfig:"TUI_FIRM_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
