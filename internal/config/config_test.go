package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Scraper.PollTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Scraper.PollInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Scraper.GracePeriod)
	assert.Equal(t, 20, cfg.Batch.MaxSize)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 100, cfg.Cache.Capacity)
	assert.True(t, cfg.Browser.Headless)
	assert.Empty(t, cfg.Database.URL)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SCRAPER_POLL_TIMEOUT", "2s")
	t.Setenv("BATCH_MAX_SIZE", "50")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Scraper.PollTimeout)
	assert.Equal(t, 50, cfg.Batch.MaxSize)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SCRAPER_POLL_TIMEOUT", "soon")
	t.Setenv("CACHE_CAPACITY", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Scraper.PollTimeout)
	assert.Equal(t, 100, cfg.Cache.Capacity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(*Config) {}},
		{
			name:    "rate limit min above max",
			mutate:  func(c *Config) { c.Scraper.RateLimitMin = 10 * time.Second; c.Scraper.RateLimitMax = time.Second },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Scraper.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "batch size below one",
			mutate:  func(c *Config) { c.Batch.MaxSize = 0 },
			wantErr: true,
		},
		{
			name:    "cache capacity below one",
			mutate:  func(c *Config) { c.Cache.Capacity = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
