package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DEVSCOUT_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", settings.Provider)
	assert.Equal(t, "info", settings.LogLevel)
	assert.NotEmpty(t, settings.StorePath)
	assert.Empty(t, settings.UserID)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEVSCOUT_PROVIDER", "anthropic")
	t.Setenv("DEVSCOUT_MODEL", "claude-3-5-haiku-latest")
	t.Setenv("DEVSCOUT_USER_ID", "user-1")
	t.Setenv("DEVSCOUT_LOG_LEVEL", "debug")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", settings.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.Model)
	assert.Equal(t, "user-1", settings.UserID)
	assert.Equal(t, "debug", settings.LogLevel)
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("DEVSCOUT_PROVIDER", "gemini")
	t.Setenv("DEVSCOUT_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "fallback-key")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", settings.APIKey)
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	t.Setenv("DEVSCOUT_PROVIDER", "openai")
	t.Setenv("DEVSCOUT_API_KEY", "explicit")
	t.Setenv("OPENAI_API_KEY", "ambient")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "explicit", settings.APIKey)
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("DEVSCOUT_PROVIDER", "cohere")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
