package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "pc!", cfg.Discord.Prefix)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "data", cfg.Store.DataDir)
	assert.Equal(t, "abort", cfg.Store.OnCorrupt)
	assert.Zero(t, cfg.Rating.Cooldown)
	assert.Equal(t, []string{"policia", "medico", "mecanico"}, cfg.Jobs)
	assert.False(t, cfg.APIEnabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("STAFF_ROLE_IDS", "111, 222,,333")
	t.Setenv("RATING_COOLDOWN", "24h")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("API_JWT_SECRET", "secret")
	t.Setenv("EVENT_BUFFER", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"111", "222", "333"}, cfg.Discord.StaffRoleIDs)
	assert.Equal(t, 24*time.Hour, cfg.Rating.Cooldown)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 64, cfg.Events.BufferSize)
	assert.True(t, cfg.APIEnabled())
	assert.False(t, cfg.RateLimitEnabled())
}

func TestRateLimitEnabled(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("API_JWT_SECRET", "secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.RateLimitEnabled())
	assert.Equal(t, 60, cfg.Server.RateLimit)
	assert.Equal(t, time.Minute, cfg.Server.RateLimitWindow)

	cfg.Server.RateLimit = 0
	assert.False(t, cfg.RateLimitEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing token aborts", func(c *Config) { c.Discord.Token = "" }, "DISCORD_BOT_TOKEN"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, "unsupported store driver"},
		{"postgres needs url", func(c *Config) { c.Store.Driver = "postgres" }, "DATABASE_URL"},
		{"redis needs url", func(c *Config) { c.Store.Driver = "redis" }, "REDIS_URL"},
		{"bad corrupt policy", func(c *Config) { c.Store.OnCorrupt = "ignore" }, "STORE_ON_CORRUPT"},
		{"negative cooldown", func(c *Config) { c.Rating.Cooldown = -time.Second }, "RATING_COOLDOWN"},
		{"no jobs", func(c *Config) { c.Jobs = nil }, "job"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }, "API_RATE_LIMIT"},
		{"rate limit needs window", func(c *Config) { c.Server.RateLimitWindow = 0 }, "API_RATE_LIMIT_WINDOW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_BOT_TOKEN", "token")
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
