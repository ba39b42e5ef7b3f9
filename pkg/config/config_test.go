package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Strategy:         StrategyContentFirst,
		SaveBackend:      SaveBackendHTTP,
		GatewayBaseURL:   "https://api.example.com",
		RetryMaxAttempts: 3,
		RetryMultiplier:  2,
		RetryBaseDelay:   time.Second,
		RetryMaxDelay:    10 * time.Second,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "https://api.example.com")
	t.Setenv("ITINERARY_STRATEGY", " AI_First ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StrategyAIFirst, cfg.Strategy)
	assert.Equal(t, SaveBackendHTTP, cfg.SaveBackend)
	assert.Equal(t, 45*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 5*time.Minute, cfg.AITimeout)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryJitter)
	assert.Equal(t, "itinerary-", cfg.GatewayServicePrefix)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UsesCloudRun())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "https://api.example.com")
	t.Setenv("GATEWAY_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse environment variables")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown strategy", func(c *Config) { c.Strategy = "random" }, "ITINERARY_STRATEGY"},
		{"unknown backend", func(c *Config) { c.SaveBackend = "s3" }, "SAVE_BACKEND"},
		{"firestore without project", func(c *Config) { c.SaveBackend = SaveBackendFirestore }, "GOOGLE_CLOUD_PROJECT"},
		{"no endpoints", func(c *Config) { c.GatewayBaseURL = "" }, "GATEWAY_BASE_URL"},
		{"topic without project", func(c *Config) { c.ProgressTopic = "progress" }, "PROGRESS_TOPIC"},
		{"zero attempts", func(c *Config) { c.RetryMaxAttempts = 0 }, "RETRY_MAX_ATTEMPTS"},
		{"shrinking backoff", func(c *Config) { c.RetryMultiplier = 0.5 }, "RETRY_MULTIPLIER"},
		{"negative delay", func(c *Config) { c.RetryJitter = -time.Second }, "negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	assert.NoError(t, validConfig().Validate())
}

func TestCloudRunWithProject(t *testing.T) {
	cfg := validConfig()
	cfg.GatewayBaseURL = ""
	cfg.ProjectID = "trip-prod"
	cfg.SaveBackend = SaveBackendFirestore

	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.UsesCloudRun())
}
