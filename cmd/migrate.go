// file: cmd/migrate.go
// version: 1.0.0
// guid: 2c9d7e40-b58a-4f13-8d26-a1e3f0c4b975

package cmd

import (
	"github.com/jdfalk/book-catalog/internal/config"
	"github.com/jdfalk/book-catalog/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeStore, err := openSession()
			if err != nil {
				return err
			}
			defer closeStore()

			// Opening the store applies pending migrations
			version, err := database.SchemaVersion(database.GlobalStore)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s schema at version %d (latest %d)\n",
				database.GlobalStore.Backend(), version, database.LatestVersion())
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or persist configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.AppConfig
			out := cmd.OutOrStdout()
			printField(out, "database_type", cfg.DatabaseType)
			printField(out, "database_path", cfg.DatabasePath)
			printField(out, "log_level", cfg.LogLevel)
			printField(out, "cache_ttl", cfg.CacheTTL.String())
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "save [PATH]",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.SaveConfigToFile(path); err != nil {
				return err
			}
			if path == "" {
				path = config.ConfigFilePath()
			}
			printf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	})

	return configCmd
}
