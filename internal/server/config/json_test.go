package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"http_addr":               ":7000",
		"database_dsn":            "mongodb://mongo:27017/events",
		"secret_key":              "json_secret",
		"token_validity_duration": "12h",
		"cache_ttl":               "1m",
		"default_page_size":       20,
		"cors_origins":            []string{"https://events.example"},
		"trusted_proxies":         []string{"10.0.0.0/8"},
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, ":7000", cfg.HTTPAddr)
		assert.Equal(t, "mongodb://mongo:27017/events", cfg.DatabaseDSN)
		assert.Equal(t, "json_secret", cfg.SecretKey)
		assert.Equal(t, 12*time.Hour, cfg.TokenValidityDuration)
		assert.Equal(t, time.Minute, cfg.CacheTTL)
		assert.Equal(t, 20, cfg.DefaultPageSize)
		assert.Equal(t, []string{"https://events.example"}, cfg.CORSOrigins)
		assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
		// untouched by the file
		assert.Equal(t, 10, cfg.BcryptCost)
		assert.Equal(t, 100, cfg.MaxPageSize)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{HTTPAddr: "defaults:1234", DatabaseDSN: "postgres://x"}
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-c", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}
