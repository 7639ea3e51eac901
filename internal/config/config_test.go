package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_PORT", "QUEUE_BACKEND", "STATS_CACHE_TTL", "LOW_ATTENDANCE_THRESHOLD"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "redis", cfg.QueueBackend)
	assert.Equal(t, 10*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 75.0, cfg.LowAttendanceThreshold)
	assert.False(t, cfg.Production())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("ACCESS_TTL", "1h")
	t.Setenv("LOW_ATTENDANCE_THRESHOLD", "80.5")
	t.Setenv("CLASSRECORD_API_URL", "https://records.example.edu/api")
	cfg := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 80.5, cfg.LowAttendanceThreshold)
	assert.Equal(t, "https://records.example.edu/api", cfg.APIURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MIN", "many")
	t.Setenv("CLIENT_TIMEOUT", "soon")
	cfg := Load()

	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, 30*time.Second, cfg.ClientTimeout)
}
