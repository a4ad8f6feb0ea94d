// file: internal/config/persistence.go
// version: 2.1.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the config file looked up in the home directory
const DefaultConfigName = ".book-catalog"

// ConfigFilePath returns the config file viper loaded, or the default
// location in the home directory.
func ConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigName+".yaml")
}

// LoadDotEnv loads each env file that exists. Variables already set in the
// environment win.
func LoadDotEnv(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: Failed to load env file %s: %v", path, err)
		}
	}
}

// SaveConfigToFile writes the effective configuration as YAML to path, or
// to ConfigFilePath when path is empty.
func SaveConfigToFile(path string) error {
	if path == "" {
		path = ConfigFilePath()
	}
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	fileConfig := map[string]any{
		"database_type": AppConfig.DatabaseType,
		"database_path": AppConfig.DatabasePath,
		"log_level":     AppConfig.LogLevel,
		"cache_ttl":     AppConfig.CacheTTL.String(),
	}

	data, err := yaml.Marshal(fileConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	// A postgres DSN may carry a password
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("Configuration saved to file: %s", path)
	return nil
}
