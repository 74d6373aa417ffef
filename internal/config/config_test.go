package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ENV", "PORT", "STORAGE_DRIVER", "DATA_DIR", "SQLITE_PATH", "OPERATOR_API_KEY",
		"MAX_BODY_BYTES", "REGISTER_RATE_LIMIT", "REGISTER_RATE_BURST", "LOG_FILE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearServerEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, "./user-data", cfg.DataDir)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 1.0, cfg.RegisterRateLimit)
	assert.Equal(t, 5, cfg.RegisterBurst)
	assert.Empty(t, cfg.OperatorAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("OPERATOR_API_KEY", "secret")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("REGISTER_RATE_LIMIT", "0.5")
	t.Setenv("REGISTER_RATE_BURST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "secret", cfg.OperatorAPIKey)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, 0.5, cfg.RegisterRateLimit)
	assert.Equal(t, 5, cfg.RegisterBurst)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("STORAGE_DRIVER", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func clearClientEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"WEALTHTRACK_API_URL", "WEALTHTRACK_DB", "WEALTHTRACK_LOG_LEVEL",
		"WEALTHTRACK_TIMEOUT", "GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadClient_Defaults(t *testing.T) {
	clearClientEnv(t)

	cfg, err := LoadClient(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001/api", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultModel, cfg.Gemini.Model)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "workspace.db", filepath.Base(cfg.WorkspaceDB))
}

func TestLoadClient_FilesMergeInOrder(t *testing.T) {
	clearClientEnv(t)
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")
	require.NoError(t, os.WriteFile(base, []byte(`
api_url = "https://sync.example.com/api"
timeout = "30s"

[gemini]
api_key = "from-file"
`), 0o600))
	require.NoError(t, os.WriteFile(local, []byte(`
timeout = "5s"
`), 0o600))

	cfg, err := LoadClient(base, local)
	require.NoError(t, err)
	assert.Equal(t, "https://sync.example.com/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "from-file", cfg.Gemini.APIKey)
	assert.Equal(t, DefaultModel, cfg.Gemini.Model)
}

func TestLoadClient_EnvOverridesFiles(t *testing.T) {
	clearClientEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`api_url = "https://file/api"`), 0o600))
	t.Setenv("WEALTHTRACK_API_URL", "https://env/api")
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("WEALTHTRACK_TIMEOUT", "2s")

	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env/api", cfg.APIURL)
	assert.Equal(t, "fallback-key", cfg.Gemini.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Timeout)

	t.Setenv("GEMINI_API_KEY", "primary-key")
	cfg, err = LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.Gemini.APIKey)
}

func TestLoadClient_InvalidInputs(t *testing.T) {
	clearClientEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`api_url = `), 0o600))

	_, err := LoadClient(path)
	assert.Error(t, err)

	t.Setenv("WEALTHTRACK_TIMEOUT", "soon")
	_, err = LoadClient()
	assert.Error(t, err)
}
