// file: cmd/root.go
// version: 2.1.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jdfalk/book-catalog/internal/config"
	"github.com/jdfalk/book-catalog/internal/database"
	"github.com/jdfalk/book-catalog/internal/logging"
	"github.com/jdfalk/book-catalog/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	cfgFile      string
	databasePath string
	databaseType string
	logLevel     string
	logFile      string
	cacheTTL     time.Duration

	openedLog *os.File
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "book-catalog",
		Short: "Manage a catalog of books",
		Long: `Book Catalog stores books in SQLite, PebbleDB or PostgreSQL.

Records are staged and committed as one batch. Every column rule (required
fields, unique names, length and year bounds) is enforced when the batch is
committed, and a batch with one bad record stores nothing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.book-catalog.yaml)")
	flags.StringVar(&opts.databasePath, "db", config.DefaultDatabasePath(), "database file, directory or postgres DSN (\":memory:\" is ephemeral)")
	flags.StringVar(&opts.databaseType, "db-type", config.DefaultDatabaseType, "database type: sqlite (default), pebble or postgres")
	flags.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "minimum log level: debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "append logs to this file instead of stderr")
	flags.DurationVar(&opts.cacheTTL, "cache-ttl", config.DefaultCacheTTL, "how long name lookups are cached (0 disables)")

	viper.BindPFlag("database_path", flags.Lookup("db"))
	viper.BindPFlag("database_type", flags.Lookup("db-type"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("cache_ttl", flags.Lookup("cache-ttl"))

	rootCmd.AddCommand(
		newAddCmd(),
		newGetCmd(),
		newListCmd(),
		newImportCmd(),
		newCheckCmd(),
		newMigrateCmd(),
		newConfigCmd(),
		newDiagnosticsCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) initialize() error {
	config.LoadDotEnv(".env", ".env.local")
	initConfig(o.cfgFile)

	if err := config.InitConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	if o.logFile != "" {
		f, err := setupFileLogging(o.logFile)
		if err != nil {
			return err
		}
		o.openedLog = f
	}

	// Ensure database directory exists
	if err := ensureDatabaseDir(config.AppConfig); err != nil {
		return err
	}
	return nil
}

func (o *rootOptions) close() error {
	if o.openedLog == nil {
		return nil
	}
	logging.SetOutput(os.Stderr)
	err := o.openedLog.Close()
	o.openedLog = nil
	return err
}

func initConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(config.DefaultConfigName)
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// setupFileLogging redirects log output to path, creating it if needed
func setupFileLogging(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logging.SetOutput(f)
	return f, nil
}

func ensureDatabaseDir(cfg config.Config) error {
	if cfg.DatabaseType == database.BackendPostgres || cfg.DatabasePath == database.MemoryPath || cfg.DatabasePath == "" {
		return nil
	}
	dir := cfg.DatabasePath
	if cfg.DatabaseType == database.BackendSQLite {
		dir = filepath.Dir(dir)
	}
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// openSession opens the configured store as GlobalStore and wraps it in a
// Session. The returned func closes the store.
func openSession() (*database.Session, func(), error) {
	cfg := config.AppConfig
	if err := database.InitializeStore(cfg.DatabaseType, cfg.DatabasePath); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	metrics.Register()

	sess := database.NewSession(database.GlobalStore, database.WithCacheTTL(cfg.CacheTTL))
	return sess, func() {
		if err := database.CloseStore(); err != nil {
			logging.Warnf("failed to close store: %v", err)
		}
	}, nil
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
