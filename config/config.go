package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	EmailSendGrid = "sendgrid"
	EmailSMTP     = "smtp"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	StoreDriver   string `env:"STORE_DRIVER"     envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"task-manager"`

	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"   envDefault:"0s"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	Email      EmailConfig
	Cloudinary CloudinaryConfig

	AvatarMaxBytes  int64 `env:"AVATAR_MAX_BYTES"  envDefault:"1024000"`
	AvatarSize      int   `env:"AVATAR_SIZE"       envDefault:"88"`
	AvatarMaxPixels int   `env:"AVATAR_MAX_PIXELS" envDefault:"16777216"`

	MaintenanceMode    bool     `env:"MAINTENANCE_MODE"     envDefault:"false"`
	LoginRateLimit     float64  `env:"LOGIN_RATE_LIMIT"     envDefault:"5"`
	LoginRateBurst     int      `env:"LOGIN_RATE_BURST"     envDefault:"10"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// EmailConfig controls the welcome and farewell notifications.
type EmailConfig struct {
	Notifications  bool   `env:"EMAIL_NOTIFICATIONS" envDefault:"false"`
	Provider       string `env:"EMAIL_PROVIDER"      envDefault:"sendgrid"`
	From           string `env:"EMAIL_FROM"`
	FromName       string `env:"EMAIL_FROM_NAME"     envDefault:"Task Manager"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       string `env:"SMTP_PORT"           envDefault:"587"`
	SMTPPassword   string `env:"EMAIL_PASSWORD"`
}

// CloudinaryConfig enables the avatar mirror when all three values are set.
type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL not set")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.AvatarMaxBytes <= 0 || c.AvatarSize <= 0 || c.AvatarMaxPixels <= 0 {
		return errors.New("AVATAR_MAX_BYTES, AVATAR_SIZE and AVATAR_MAX_PIXELS must be positive")
	}
	if c.Email.Notifications {
		if c.Email.From == "" {
			return errors.New("EMAIL_FROM not set")
		}
		switch c.Email.Provider {
		case EmailSendGrid:
			if c.Email.SendGridAPIKey == "" {
				return errors.New("SENDGRID_API_KEY not set")
			}
		case EmailSMTP:
			if c.Email.SMTPHost == "" {
				return errors.New("SMTP_HOST not set")
			}
		default:
			return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider)
		}
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
