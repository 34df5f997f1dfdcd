package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVICE_NAME", "Soar School API")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "soar-school-api", cfg.App.Name)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, "memory", cfg.RateLimit.Store)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Auth.Window)
	assert.Equal(t, 100, cfg.RateLimit.API.Max)
	assert.False(t, cfg.App.IsProduction())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "*", cfg.App.CORSAllowOrigins)
}

func TestLoad_RateLimitOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_STORE", "redis")
	t.Setenv("RATE_LIMIT_API_WINDOW", "2s")
	t.Setenv("RATE_LIMIT_API_MAX", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.RateLimit.Store)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.API.Window)
	assert.Equal(t, 3, cfg.RateLimit.API.Max)
	assert.True(t, cfg.Redis.Enabled, "redis store implies a redis connection")
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_STORE", "etcd")

	_, err := Load()
	assert.Error(t, err)
}
