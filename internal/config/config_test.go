package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"URL", "DOWNLOAD_LABEL", "TIMEOUT", "SERVER_ADDR", "MAX_BODY_BYTES", "LOG_LEVEL"} {
		name := EnvPrefix + "_" + key
		if old, ok := os.LookupEnv(name); ok {
			require.NoError(t, os.Unsetenv(name))
			t.Cleanup(func() { os.Setenv(name, old) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.URL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, int64(10485760), cfg.MaxBodyBytes)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHARTCSV_URL", "https://export.example.com/csv")
	t.Setenv("CHARTCSV_DOWNLOAD_LABEL", "CSV herunterladen")
	t.Setenv("CHARTCSV_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://export.example.com/csv", cfg.URL)
	assert.Equal(t, "CSV herunterladen", cfg.DownloadLabel)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadFileEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "chartcsv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: https://file.example.com/csv
server_addr: ":9090"
log_level: debug
`), 0644))
	t.Setenv("CHARTCSV_URL", "https://env.example.com/csv")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/csv", cfg.URL)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad url", "CHARTCSV_URL", "not a url"},
		{"bad log level", "CHARTCSV_LOG_LEVEL", "loud"},
		{"bad body limit", "CHARTCSV_MAX_BODY_BYTES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
