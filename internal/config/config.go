package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/carlosandre007/escala/internal/database"
	"github.com/carlosandre007/escala/internal/scheduler"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Escala"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"escala"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
		// Migrate applies pending migrations before the store is used.
		Migrate bool `envconfig:"DB_MIGRATE" default:"true"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
		ConnectTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Scheduler struct {
		Timezone        string `envconfig:"SCHEDULER_TIMEZONE" default:"Local"`
		SuccessorPolicy string `envconfig:"SCHEDULER_SUCCESSOR_POLICY" default:"leave"`
	}

	// AMQP publishing is off while URL is empty.
	AMQP struct {
		URL        string `envconfig:"AMQP_URL"`
		Exchange   string `envconfig:"AMQP_EXCHANGE" default:"escala.charges"`
		RoutingKey string `envconfig:"AMQP_ROUTING_KEY" default:"charge"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Location resolves SCHEDULER_TIMEZONE, which decides what "today" means.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE: %w", err)
	}

	return loc, nil
}

func (c *Config) SuccessorPolicy() (scheduler.SuccessorPolicy, error) {
	p, err := scheduler.ParseSuccessorPolicy(c.Scheduler.SuccessorPolicy)
	if err != nil {
		return "", fmt.Errorf("invalid SCHEDULER_SUCCESSOR_POLICY: %w", err)
	}

	return p, nil
}

// Logger builds the slog logger selected by LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() (*slog.Logger, error) {
	return c.LoggerTo(os.Stderr)
}

func (c *Config) LoggerTo(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Log.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", c.Log.Format)
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	if _, err := cfg.SuccessorPolicy(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Pool returns the connection pool settings for database.New.
func (c *Config) Pool() database.Pool {
	return database.Pool{
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
		ConnectTimeout:  c.DB.ConnectTimeout,
	}
}
