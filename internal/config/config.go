// Package config resolves runtime settings from flags, environment
// variables, and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the resolved runtime configuration.
type Settings struct {
	// Provider selects the model backend: openai, anthropic, or gemini.
	Provider string
	// Model is the provider-specific model identifier; empty picks the
	// provider default.
	Model string
	// APIKey authenticates against the selected provider.
	APIKey string
	// UserID identifies the session owner. Empty means unauthenticated,
	// which disables conversation persistence.
	UserID string
	// StorePath locates the conversation database file.
	StorePath string
	LogLevel  string
	LogFile   string
}

// apiKeyEnvVars maps each provider to the environment variables checked for
// its API key, in precedence order.
var apiKeyEnvVars = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Load resolves settings in precedence order: explicit DEVSCOUT_* environment
// variables, then a .env file in the working directory, then defaults.
// Provider API keys additionally fall back to the provider SDKs' conventional
// variable names.
func Load() (*Settings, error) {
	// Missing .env is the common case and not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DEVSCOUT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("provider", "openai")
	v.SetDefault("store-path", defaultStorePath())
	v.SetDefault("log-level", "info")

	s := &Settings{
		Provider:  strings.ToLower(v.GetString("provider")),
		Model:     v.GetString("model"),
		APIKey:    v.GetString("api-key"),
		UserID:    v.GetString("user-id"),
		StorePath: v.GetString("store-path"),
		LogLevel:  v.GetString("log-level"),
		LogFile:   v.GetString("log-file"),
	}

	if s.APIKey == "" {
		s.APIKey = resolveAPIKey(s.Provider)
	}
	if _, known := apiKeyEnvVars[s.Provider]; !known {
		return nil, fmt.Errorf("unknown provider %q (expected openai, anthropic, or gemini)", s.Provider)
	}
	return s, nil
}

func resolveAPIKey(provider string) string {
	for _, name := range apiKeyEnvVars[provider] {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

func defaultStorePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "devscout", "chats.db")
	}
	return filepath.Join(configDir, "devscout", "chats.db")
}
