package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Settings holds runtime settings read from BLOGLOG_* environment variables.
type Settings struct {
	Host     string        `env:"BLOGLOG_HOST"      envDefault:"127.0.0.1"`
	Port     int           `env:"BLOGLOG_PORT"      envDefault:"3001"`
	Model    string        `env:"BLOGLOG_MODEL"     envDefault:"sonnet"`
	Timeout  time.Duration `env:"BLOGLOG_TIMEOUT"   envDefault:"5m"`
	LogLevel slog.Level    `env:"BLOGLOG_LOG_LEVEL" envDefault:"info"`
}

// Load parses Settings from the environment and validates them.
func Load() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Host, validation.Required),
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.Model, validation.Required),
		validation.Field(&s.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// Address returns the host:port the web server listens on.
func (s *Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the browser URL for the web server.
func (s *Settings) URL() string {
	host := s.Host
	if host == "127.0.0.1" || host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port))
}
