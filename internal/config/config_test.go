package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/canvas-dashboard/internal/config"
	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := config.FromMap(nil)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://canvas.docker", c.GetLMSBaseURL())
	require.Equal(t, "1", c.GetLMSAccountID())
	require.Equal(t, "/api/canvas", c.GetProxyPrefix())
	require.Equal(t, "cookie", c.GetSessionStore())
	require.Equal(t, "canvas_user_session", c.GetSessionCookieName())
	require.Equal(t, 30*time.Second, c.GetCacheTTL())
	require.Equal(t, 70.0, c.GetRiskThreshold())
	require.Empty(t, c.GetAllowedOrigins())
	require.NoError(t, c.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CANVAS_API_URL", "https://canvas.example.edu/")
	t.Setenv("CANVAS_API_KEY", "token-1")
	t.Setenv("PROXY_PREFIX", "lms/")
	t.Setenv("SESSION_STORE", "MEMORY")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c := config.New()

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "https://canvas.example.edu", c.GetLMSBaseURL())
	require.Equal(t, "token-1", c.GetLMSToken())
	require.Equal(t, "/lms", c.GetProxyPrefix())
	require.Equal(t, "memory", c.GetSessionStore())
	require.Equal(t, 2*time.Minute, c.GetCacheTTL())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("bad url", func(t *testing.T) {
		c := config.FromMap(map[string]any{"CANVAS_API_URL": "not a url"})
		err := c.Validate()
		require.Error(t, err)
		require.True(t, apperrors.Is(err, apperrors.ErrInvalidConfig))
		require.Contains(t, err.Error(), "LMSBaseURL")
	})

	t.Run("unknown session store", func(t *testing.T) {
		c := config.FromMap(map[string]any{"SESSION_STORE": "redis"})
		err := c.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "SessionStore")
	})

	t.Run("zero pages", func(t *testing.T) {
		c := config.FromMap(map[string]any{"CANVAS_MAX_PAGES": 0})
		require.Error(t, c.Validate())
	})
}
