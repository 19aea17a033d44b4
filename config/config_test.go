package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/salonpos")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com/, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "America/Lima", cfg.Timezone)
	assert.Equal(t, 48*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 2880*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, ReceiptDeliveryEmail, cfg.Receipts.Delivery)
	assert.Equal(t, 5, cfg.Outbox.MaxAttempts)
	assert.False(t, cfg.Firebase.Enabled())
	assert.False(t, cfg.Twilio.Enabled())

	assert.Equal(t, []string{
		"https://app.example.com",
		"https://admin.example.com",
		"http://localhost:3000",
		"http://localhost:3001",
	}, cfg.Origins())
}

func TestLoadProductionOrigins(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/salonpos")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Origins())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/salonpos")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RECEIPT_DELIVERY", "fax")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
