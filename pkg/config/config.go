package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment
type Config struct {
	Port      string `env:"PORT" envDefault:"8000" validate:"required,numeric"`
	GinMode   string `env:"GIN_MODE"`
	AppEnv    string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production test"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	APIPrefix string `env:"API_PREFIX" envDefault:"api/v1"`

	DatabaseURL string `env:"DATABASE_URL"`
	DataPath    string `env:"DATA_PATH" envDefault:"carehome.db"`

	JWTSecret     string        `env:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h" validate:"gt=0"`
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"1h" validate:"gt=0"`

	QRKeyBits    int           `env:"QR_KEY_BITS" envDefault:"2048" validate:"min=1024,max=8192"`
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL" envDefault:"5m" validate:"gt=0"`
	// CapacityMode takes the shifts.CapacityBatch or shifts.CapacityTotal value
	CapacityMode string        `env:"CAPACITY_MODE" envDefault:"batch" validate:"oneof=batch total"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com" validate:"email"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

var validate = validator.New()

// Load reads .env (if present) and parses the environment into a validated Config
func Load() (*Config, error) {
	// Try root and parent directories for flexibility
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return nil, fmt.Errorf("load %s: %w", p, err)
			}
			break
		}
	}
	return Parse()
}

// Parse builds a Config from the current environment only
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct constraints on a Config
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// UsePostgres reports whether DATABASE_URL selects postgres over sqlite
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}
