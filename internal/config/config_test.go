// file: internal/config/config_test.go
// version: 2.1.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitConfig tests configuration initialization with defaults
func TestInitConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, InitConfig())

	assert.Equal(t, "sqlite", AppConfig.DatabaseType)
	assert.Equal(t, filepath.Join(home, ".book-catalog", "catalog.db"), AppConfig.DatabasePath)
	assert.Equal(t, "info", AppConfig.LogLevel)
	assert.Equal(t, 30*time.Second, AppConfig.CacheTTL)
}

func TestInitConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("database_type", "SQLite3")
	viper.Set("database_path", "/tmp/books.db")
	viper.Set("log_level", "debug")
	viper.Set("cache_ttl", "2m")

	require.NoError(t, InitConfig())

	assert.Equal(t, "sqlite", AppConfig.DatabaseType)
	assert.Equal(t, "/tmp/books.db", AppConfig.DatabasePath)
	assert.Equal(t, "debug", AppConfig.LogLevel)
	assert.Equal(t, 2*time.Minute, AppConfig.CacheTTL)
}

func TestInitConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	t.Setenv("BOOK_CATALOG_DATABASE_TYPE", "pebble")

	require.NoError(t, InitConfig())
	assert.Equal(t, "pebble", AppConfig.DatabaseType)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "sqlite memory", cfg: Config{DatabaseType: "sqlite", DatabasePath: ":memory:", LogLevel: "info"}},
		{name: "pebble", cfg: Config{DatabaseType: "pebble", LogLevel: "warn"}},
		{name: "postgres with dsn", cfg: Config{DatabaseType: "postgres", DatabasePath: "postgres://localhost/books", LogLevel: "info"}},
		{name: "postgres without dsn", cfg: Config{DatabaseType: "postgres", DatabasePath: ":memory:"}, wantErr: "connection string"},
		{name: "unknown backend", cfg: Config{DatabaseType: "mongodb"}, wantErr: "unsupported database_type"},
		{name: "bad log level", cfg: Config{DatabaseType: "sqlite", LogLevel: "loud"}, wantErr: "unknown log level"},
		{name: "negative ttl", cfg: Config{DatabaseType: "sqlite", CacheTTL: -time.Second}, wantErr: "cache_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeDatabaseType(t *testing.T) {
	assert.Equal(t, "sqlite", normalizeDatabaseType(""))
	assert.Equal(t, "sqlite", normalizeDatabaseType(" sqlite3 "))
	assert.Equal(t, "postgres", normalizeDatabaseType("PostgreSQL"))
	assert.Equal(t, "postgres", normalizeDatabaseType("pg"))
	assert.Equal(t, "pebble", normalizeDatabaseType("pebble"))
}

func TestDefaultDatabasePathWithoutHome(t *testing.T) {
	t.Setenv("HOME", "")
	assert.Equal(t, ":memory:", DefaultDatabasePath())
}
