package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "JWT_SECRET", "REQUIRE_ACTIVE_ACCOUNT", "RATELIMIT_STRICT_REQUESTS", "TRUST_PROXY_HEADERS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, cfg.AccessTTL, cfg.AccessCookieMaxAge)
	require.Equal(t, cfg.RefreshTTL, cfg.RefreshCookieMaxAge)
	require.Equal(t, "/api/auth", cfg.RefreshCookiePath)
	require.True(t, cfg.RequireActiveAccount)
	require.Equal(t, 5, cfg.StrictLimit.Requests)
	require.Equal(t, time.Minute, cfg.StrictLimit.Window)
	require.Equal(t, 100, cfg.LenientLimit.Requests)
	require.False(t, cfg.TrustProxyHeaders, "forwarding headers are ignored unless a proxy is configured")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "5m")
	t.Setenv("JWT_REFRESH_COOKIE_MAX_AGE", "3600")
	t.Setenv("REQUIRE_ACTIVE_ACCOUNT", "false")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "3")
	t.Setenv("RATELIMIT_STRICT_WINDOW_SEC", "30")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg := LoadConfig()

	require.True(t, cfg.IsProd())
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 5*time.Minute, cfg.AccessCookieMaxAge)
	require.Equal(t, time.Hour, cfg.RefreshCookieMaxAge)
	require.False(t, cfg.RequireActiveAccount)
	require.Equal(t, 3, cfg.StrictLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.StrictLimit.Window)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.True(t, cfg.TrustProxyHeaders)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"prod without secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "at least 32 bytes"},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }, "JWT_ACCESS_TOKEN_EXPIRY"},
		{"negative refresh ttl", func(c *Config) { c.RefreshTTL = -time.Second }, "JWT_REFRESH_TOKEN_EXPIRY"},
		{"zero strict limit", func(c *Config) { c.StrictLimit.Requests = 0 }, "strict rate limit"},
		{"zero lenient window", func(c *Config) { c.LenientLimit.Window = 0 }, "lenient rate limit"},
		{"relative cookie path", func(c *Config) { c.RefreshCookiePath = "api" }, "JWT_REFRESH_COOKIE_PATH"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
