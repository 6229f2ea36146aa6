package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sankhyaConfig "github.com/iurnickita/sankhyagw/internal/sankhya/config"
)

func TestGetConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")

	cfg, err := GetConfig()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Handler.ServerAddr)
	require.Equal(t, "info", cfg.Logger.LogLevel)
	require.Equal(t, sankhyaConfig.Default(), cfg.Sankhya)
}

func TestGetConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")
	t.Setenv("SANKHYA_RETRY_DELAY", "500ms")
	t.Setenv("SANKHYA_TOKEN_CACHE", "true")
	t.Setenv("SANKHYA_SANDBOX_URL", "http://localhost:9000")

	cfg, err := GetConfig()
	require.NoError(t, err)

	require.Equal(t, 500*time.Millisecond, cfg.Sankhya.RetryDelay)
	require.True(t, cfg.Sankhya.TokenCache)
	require.Equal(t, "http://localhost:9000", cfg.Sankhya.SandboxURL)
}

func TestGetConfigRejectsZeroAttempts(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")
	t.Setenv("SANKHYA_MAX_ATTEMPTS", "0")

	_, err := GetConfig()
	require.Error(t, err)
}

func TestGetConfigRequiresAuthSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := GetConfig()
	require.Error(t, err)
}
