// Package config loads application configuration from defaults, an optional
// YAML file and CODESUGGEST_ environment variables, in increasing precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CODESUGGEST_LISTEN_ADDR.
const EnvPrefix = "CODESUGGEST"

// SupportedProviders lists the accepted ai_provider values. Empty disables AI.
var SupportedProviders = []string{"anthropic", "gemini"}

// Defaults.
const (
	DefaultListenAddr       = "127.0.0.1:8080"
	DefaultDBPath           = "codesuggest.db"
	DefaultAITimeout        = 10 * time.Second
	DefaultAIMaxSuggestions = 5
	DefaultAICacheSize      = 200
	DefaultLogLevel         = "info"
)

// Config holds the validated application configuration.
type Config struct {
	ListenAddr       string        `mapstructure:"listen_addr"`
	DBPath           string        `mapstructure:"db_path"`
	SecretKey        string        `mapstructure:"secret_key"`
	AIProvider       string        `mapstructure:"ai_provider"`
	AIAPIKey         string        `mapstructure:"ai_api_key"`
	AIModel          string        `mapstructure:"ai_model"`
	AITimeout        time.Duration `mapstructure:"ai_timeout"`
	AIMaxSuggestions int           `mapstructure:"ai_max_suggestions"`
	AICacheSize      int           `mapstructure:"ai_cache_size"`
	GitHubToken      string        `mapstructure:"github_token"`
	LogLevel         string        `mapstructure:"log_level"`

	// EncryptionKey is SecretKey decoded to 32 bytes, or nil when unset.
	EncryptionKey []byte `mapstructure:"-"`
}

// HasAIProvider reports whether a provider is named. Its key may still come
// from encrypted credential storage rather than AIAPIKey.
func (c *Config) HasAIProvider() bool {
	return c.AIProvider != ""
}

// SlogLevel maps LogLevel to a slog.Level; unknown values mean Info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration and returns a validated Config. cfgFile names an
// explicit YAML file; when empty, ./codesuggest.yaml is read if present.
// A missing default file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("secret_key", "")
	v.SetDefault("ai_provider", "")
	v.SetDefault("ai_api_key", "")
	v.SetDefault("ai_model", "")
	v.SetDefault("ai_timeout", DefaultAITimeout)
	v.SetDefault("ai_max_suggestions", DefaultAIMaxSuggestions)
	v.SetDefault("ai_cache_size", DefaultAICacheSize)
	v.SetDefault("github_token", "")
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("codesuggest")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	if c.AIProvider != "" && !isSupportedProvider(c.AIProvider) {
		return fmt.Errorf("ai_provider %q is not supported (want one of %s)", c.AIProvider, strings.Join(SupportedProviders, ", "))
	}

	if c.AITimeout <= 0 {
		return fmt.Errorf("ai_timeout must be positive, got %s", c.AITimeout)
	}
	if c.AIMaxSuggestions <= 0 {
		return fmt.Errorf("ai_max_suggestions must be positive, got %d", c.AIMaxSuggestions)
	}
	if c.AICacheSize < 0 {
		return fmt.Errorf("ai_cache_size must not be negative, got %d", c.AICacheSize)
	}

	key, err := decodeSecretKey(c.SecretKey)
	if err != nil {
		return err
	}
	c.EncryptionKey = key

	c.DBPath = expandPath(c.DBPath)
	return nil
}

// decodeSecretKey accepts 64 hex characters or exactly 32 raw bytes.
func decodeSecretKey(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) == 64 {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	if len(s) == 32 {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("secret_key must be 32 bytes or 64 hex characters, got %d characters", len(s))
}

func isSupportedProvider(name string) bool {
	for _, p := range SupportedProviders {
		if p == name {
			return true
		}
	}
	return false
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
