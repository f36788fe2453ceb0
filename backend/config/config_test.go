package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "INR", cfg.PaymentCurrency)
	assert.Equal(t, time.Minute, cfg.CatalogCacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("FRONTEND_URL", "https://learn.example.com/")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "https://learn.example.com", cfg.FrontendURL)
	assert.Equal(t, "rzp_secret", cfg.RazorpayKeySecret)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
