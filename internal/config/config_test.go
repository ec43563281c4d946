package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, "https://www.reddit.com", cfg.PrimaryBaseURL)
	require.Equal(t, "https://meme-api.com", cfg.FallbackBaseURL)
	require.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	require.Equal(t, 300*time.Second, cfg.CacheTTL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, 100, cfg.MaxIdleConns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CACHE_BACKEND", "None")
	t.Setenv("MAX_IDLE_CONNS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9999", cfg.ListenAddr)
	require.Equal(t, 2*time.Minute, cfg.CacheTTL)
	require.Equal(t, CacheBackendNone, cfg.CacheBackend, "backend name is case-insensitive")
	require.Equal(t, 7, cfg.MaxIdleConns)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "CACHE_TTL", "five minutes"},
		{"zero ttl", "CACHE_TTL", "0s"},
		{"bad int", "MAX_IDLE_CONNS", "many"},
		{"unknown backend", "CACHE_BACKEND", "memcached"},
		{"bad primary scheme", "PRIMARY_BASE_URL", "ftp://reddit.com"},
		{"hostless fallback", "FALLBACK_BASE_URL", "https://"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadRedisRequiresURL(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, CacheBackendRedis, cfg.CacheBackend)
}
