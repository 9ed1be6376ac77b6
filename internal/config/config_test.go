package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "users.db", cfg.DatabaseURL)
	assert.Equal(t, "session", cfg.SessionCookieName)
	assert.Equal(t, 12*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.False(t, cfg.Debug, "debug mode must be opt-in")
	assert.False(t, cfg.CORSEnabled)
	assert.False(t, cfg.SessionSecretGenerated)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
}

func TestLoadRequiresSecretOutsideDebug(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DEBUG", "false")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadGeneratesSecretInDebug(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.SessionSecretGenerated)
	assert.Len(t, cfg.SessionSecret, 64)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "MySQL")
	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/portal")
	t.Setenv("CORS_ENABLED", "true")
	t.Setenv("SESSION_IDLE_MINUTES", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mysql", cfg.DatabaseDriver)
	assert.True(t, cfg.CORSEnabled)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown driver", key: "DATABASE_DRIVER", val: "oracle"},
		{name: "bad port", key: "PORT", val: "http"},
		{name: "bcrypt cost too high", key: "BCRYPT_COST", val: "40"},
		{name: "unknown log level", key: "LOG_LEVEL", val: "verbose"},
		{name: "short secret", key: "SESSION_SECRET", val: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.example , ,http://b.example"}
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins())
}
