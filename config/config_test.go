package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, int64(1024000), cfg.AvatarMaxBytes)
	assert.Equal(t, 88, cfg.AvatarSize)
	assert.Equal(t, 4096*4096, cfg.AvatarMaxPixels)
	assert.False(t, cfg.Email.Notifications)
	assert.False(t, cfg.Cloudinary.Enabled())
}

func TestParseReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("EMAIL_NOTIFICATIONS", "true")
	t.Setenv("EMAIL_PROVIDER", "smtp")
	t.Setenv("EMAIL_FROM", "info@example.com")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.Email.Notifications)
	assert.Equal(t, "587", cfg.Email.SMTPPort)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StoreDriver:     DriverMemory,
			JWTSecret:       "s3cret",
			BcryptCost:      10,
			AvatarMaxBytes:  1024,
			AvatarSize:      88,
			AvatarMaxPixels: 4096 * 4096,
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.JWTSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = base()
	cfg.StoreDriver = DriverPostgres
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg = base()
	cfg.StoreDriver = "redis"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.AvatarMaxPixels = 0
	assert.ErrorContains(t, cfg.Validate(), "AVATAR_MAX_PIXELS")

	cfg = base()
	cfg.BcryptCost = 2
	assert.ErrorContains(t, cfg.Validate(), "BCRYPT_COST")

	cfg = base()
	cfg.Email = EmailConfig{Notifications: true, Provider: EmailSendGrid, From: "info@example.com"}
	assert.ErrorContains(t, cfg.Validate(), "SENDGRID_API_KEY")
}
