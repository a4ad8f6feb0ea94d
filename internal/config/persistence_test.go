// file: internal/config/persistence_test.go
// version: 2.1.0
// guid: 3e4f5a6b-7c8d-9e0f-1a2b-3c4d5e6f7a8b

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withAppConfig(t *testing.T, cfg Config) {
	t.Helper()
	prev := AppConfig
	AppConfig = cfg
	t.Cleanup(func() { AppConfig = prev })
}

func TestSaveConfigFileIsReadableByViper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "book-catalog.yaml")
	withAppConfig(t, Config{
		DatabaseType: "pebble",
		DatabasePath: "/var/lib/books",
		LogLevel:     "warn",
		CacheTTL:     90 * time.Second,
	})

	require.NoError(t, SaveConfigToFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, "pebble", v.GetString("database_type"))
	assert.Equal(t, "/var/lib/books", v.GetString("database_path"))
	assert.Equal(t, "warn", v.GetString("log_level"))
	assert.Equal(t, 90*time.Second, v.GetDuration("cache_ttl"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(envFile, []byte("BOOK_CATALOG_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BOOK_CATALOG_TEST_DOTENV") })

	LoadDotEnv(filepath.Join(dir, "missing.env"), envFile)
	assert.Equal(t, "from-file", os.Getenv("BOOK_CATALOG_TEST_DOTENV"))
}
