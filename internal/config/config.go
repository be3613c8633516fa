// Package config loads taskboard configuration from defaults, an optional
// YAML file and TASKBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server ServerConfig `koanf:"server"`
	Store  StoreConfig  `koanf:"store"`
	Log    LogConfig    `koanf:"log"`
	Seed   SeedConfig   `koanf:"seed"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=0"`
}

type StoreConfig struct {
	Driver          string        `koanf:"driver" validate:"oneof=memory postgres sqlite mongo firestore"`
	DSN             string        `koanf:"dsn" validate:"required_if=Driver postgres,required_if=Driver sqlite,required_if=Driver mongo"`
	Database        string        `koanf:"database" validate:"required_if=Driver mongo"`
	ProjectID       string        `koanf:"project_id" validate:"required_if=Driver firestore"`
	CredentialsFile string        `koanf:"credentials_file"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// SeedConfig is the account created when the user collection is empty.
type SeedConfig struct {
	Name     string `koanf:"name" validate:"required"`
	Email    string `koanf:"email" validate:"required,email"`
	Password string `koanf:"password" validate:"required"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			RateBurst:       20,
		},
		Store: StoreConfig{
			Driver:   "memory",
			Database: "task_manager",
			Timeout:  10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Seed: SeedConfig{
			Name:     "Team Lead",
			Email:    "lead@example.com",
			Password: "changeme",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
