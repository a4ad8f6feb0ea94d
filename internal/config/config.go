// file: internal/config/config.go
// version: 2.1.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jdfalk/book-catalog/internal/database"
	"github.com/jdfalk/book-catalog/internal/logging"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BOOK_CATALOG_DATABASE_TYPE
const EnvPrefix = "BOOK_CATALOG"

// Config holds application configuration
type Config struct {
	DatabaseType string        `yaml:"database_type"` // "sqlite" (default), "pebble" or "postgres"
	DatabasePath string        `yaml:"database_path"` // file path, ":memory:" or a postgres DSN
	LogLevel     string        `yaml:"log_level"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

var AppConfig Config

// Defaults
const (
	DefaultDatabaseType = database.BackendSQLite
	DefaultDatabaseFile = "catalog.db"
	DefaultLogLevel     = "info"
	DefaultCacheTTL     = database.DefaultCacheTTL
)

// DefaultDatabasePath is $HOME/.book-catalog/catalog.db, so the catalog
// survives between runs. Without a home directory it falls back to
// ":memory:".
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return database.MemoryPath
	}
	return filepath.Join(home, DefaultConfigName, DefaultDatabaseFile)
}

// SetDefaults registers default values with viper
func SetDefaults() {
	viper.SetDefault("database_type", DefaultDatabaseType)
	viper.SetDefault("database_path", DefaultDatabasePath())
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("cache_ttl", DefaultCacheTTL)
}

// InitConfig initializes the application configuration from viper
func InitConfig() error {
	SetDefaults()

	AppConfig = Config{
		DatabaseType: viper.GetString("database_type"),
		DatabasePath: viper.GetString("database_path"),
		LogLevel:     viper.GetString("log_level"),
		CacheTTL:     viper.GetDuration("cache_ttl"),
	}

	// Normalize database type
	AppConfig.DatabaseType = normalizeDatabaseType(AppConfig.DatabaseType)

	return AppConfig.Validate()
}

// Validate reports the first unusable setting
func (c Config) Validate() error {
	switch c.DatabaseType {
	case database.BackendSQLite, database.BackendPebble:
	case database.BackendPostgres:
		if c.DatabasePath == "" || c.DatabasePath == database.MemoryPath {
			return fmt.Errorf("database_path must be a connection string when database_type is postgres")
		}
	default:
		return fmt.Errorf("unsupported database_type %q", c.DatabaseType)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %v", c.CacheTTL)
	}
	return nil
}

func normalizeDatabaseType(t string) string {
	switch t = strings.ToLower(strings.TrimSpace(t)); t {
	case "", "sqlite3":
		return database.BackendSQLite
	case "postgresql", "pg":
		return database.BackendPostgres
	}
	return t
}
