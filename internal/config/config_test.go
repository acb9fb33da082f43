package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every CODESUGGEST_ env var that Load() reads.
var allConfigKeys = []string{
	"CODESUGGEST_LISTEN_ADDR",
	"CODESUGGEST_DB_PATH",
	"CODESUGGEST_SECRET_KEY",
	"CODESUGGEST_AI_PROVIDER",
	"CODESUGGEST_AI_API_KEY",
	"CODESUGGEST_AI_MODEL",
	"CODESUGGEST_AI_TIMEOUT",
	"CODESUGGEST_AI_MAX_SUGGESTIONS",
	"CODESUGGEST_AI_CACHE_SIZE",
	"CODESUGGEST_GITHUB_TOKEN",
	"CODESUGGEST_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all CODESUGGEST_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server), and
// moves into an empty directory so no ./codesuggest.yaml is picked up.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "codesuggest.db", cfg.DBPath)
	assert.Equal(t, 10*time.Second, cfg.AITimeout)
	assert.Equal(t, 5, cfg.AIMaxSuggestions)
	assert.Equal(t, 200, cfg.AICacheSize)
	assert.Empty(t, cfg.AIProvider)
	assert.False(t, cfg.HasAIProvider())
	assert.Nil(t, cfg.EncryptionKey)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CODESUGGEST_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("CODESUGGEST_DB_PATH", "/tmp/test.db")
	t.Setenv("CODESUGGEST_AI_PROVIDER", " Gemini ")
	t.Setenv("CODESUGGEST_AI_API_KEY", "g-key")
	t.Setenv("CODESUGGEST_AI_MODEL", "gemini-2.5-pro")
	t.Setenv("CODESUGGEST_AI_TIMEOUT", "3s")
	t.Setenv("CODESUGGEST_AI_CACHE_SIZE", "0")
	t.Setenv("CODESUGGEST_GITHUB_TOKEN", "ghp_test")
	t.Setenv("CODESUGGEST_LOG_LEVEL", "debug")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "gemini", cfg.AIProvider)
	assert.Equal(t, "g-key", cfg.AIAPIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.AIModel)
	assert.Equal(t, 3*time.Second, cfg.AITimeout)
	assert.Equal(t, 0, cfg.AICacheSize)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateConfigEnv(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	yaml := "listen_addr: 127.0.0.1:7070\nai_provider: anthropic\nai_timeout: 20s\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	// Environment wins over the file.
	t.Setenv("CODESUGGEST_AI_TIMEOUT", "4s")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7070", cfg.ListenAddr)
	assert.Equal(t, "anthropic", cfg.AIProvider)
	assert.Equal(t, 4*time.Second, cfg.AITimeout)
}

func TestLoad_DefaultConfigFileInWorkingDir(t *testing.T) {
	isolateConfigEnv(t)
	require.NoError(t, os.WriteFile("codesuggest.yaml", []byte("db_path: local.db\n"), 0o600))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "local.db", cfg.DBPath)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolateConfigEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_SecretKey(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	rawKey := strings.Repeat("k", 32)

	tests := []struct {
		name    string
		value   string
		want    []byte
		wantErr bool
	}{
		{name: "hex", value: hexKey, want: bytes.Repeat([]byte{0xab}, 32)},
		{name: "raw", value: rawKey, want: []byte(rawKey)},
		{name: "too short", value: "short", wantErr: true},
		{name: "64 chars not hex", value: strings.Repeat("z", 64), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("CODESUGGEST_SECRET_KEY", tc.value)

			cfg, err := Load("")

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "secret_key")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.EncryptionKey)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{name: "unknown provider", key: "CODESUGGEST_AI_PROVIDER", value: "openai", wantMsg: "ai_provider"},
		{name: "bad duration", key: "CODESUGGEST_AI_TIMEOUT", value: "soon", wantMsg: "decode config"},
		{name: "zero timeout", key: "CODESUGGEST_AI_TIMEOUT", value: "0s", wantMsg: "ai_timeout"},
		{name: "zero max suggestions", key: "CODESUGGEST_AI_MAX_SUGGESTIONS", value: "0", wantMsg: "ai_max_suggestions"},
		{name: "negative cache", key: "CODESUGGEST_AI_CACHE_SIZE", value: "-1", wantMsg: "ai_cache_size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load("")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
