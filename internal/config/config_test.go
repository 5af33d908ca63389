package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Scraper.PriceScanLines)
	assert.Equal(t, 3*time.Second, cfg.Scraper.RateLimitMin)
	assert.Equal(t, 15*time.Second, cfg.Scraper.RateLimitMax)
	assert.Equal(t, "listings.scraped", cfg.Redis.Stream)
	assert.Equal(t, "price_tracker", cfg.Database.DBName)
	assert.True(t, cfg.Browser.Headless)
	assert.NotEmpty(t, cfg.Scraper.UserAgents)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_PRICE_SCAN_LINES", "10")
	t.Setenv("SCRAPER_NOON_RENDER_WAIT", "5s")
	t.Setenv("REDIS_STREAM", "custom.stream")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scraper.PriceScanLines)
	assert.Equal(t, 5*time.Second, cfg.Scraper.NoonRenderWait)
	assert.Equal(t, "custom.stream", cfg.Redis.Stream)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "rate limit min above max",
			mutate: func(c *Config) {
				c.Scraper.RateLimitMin = 20 * time.Second
				c.Scraper.RateLimitMax = 10 * time.Second
			},
			wantErr: true,
		},
		{
			name: "zero scan lines",
			mutate: func(c *Config) {
				c.Scraper.PriceScanLines = 0
			},
			wantErr: true,
		},
		{
			name: "negative retries",
			mutate: func(c *Config) {
				c.Scraper.MaxRetries = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)

			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
