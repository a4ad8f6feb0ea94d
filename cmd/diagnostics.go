// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"errors"
	"fmt"

	"github.com/jdfalk/book-catalog/internal/database"
	"github.com/spf13/cobra"
)

func newDiagnosticsCmd() *cobra.Command {
	diagnosticsCmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging helpers",
		Long:  "Diagnostic utilities for inspecting the book database.",
	}

	diagnosticsCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show backend, schema version and row count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeStore, err := openSession()
			if err != nil {
				return err
			}
			defer closeStore()

			store := sess.Store()
			version, err := database.SchemaVersion(store)
			if err != nil {
				return err
			}
			count, err := store.CountBooks()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printField(out, "Backend", store.Backend())
			printField(out, "Schema", fmt.Sprintf("%d/%d", version, database.LatestVersion()))
			printField(out, "Books", fmt.Sprintf("%d", count))
			return nil
		},
	})

	var (
		limit  int
		prefix string
	)
	rawCmd := &cobra.Command{
		Use:   "raw",
		Short: "Dump raw Pebble keys and values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeStore, err := openSession()
			if err != nil {
				return err
			}
			defer closeStore()

			pebbleStore, ok := sess.Store().(*database.PebbleStore)
			if !ok {
				return errors.New("raw mode is only available for the Pebble backend")
			}

			out := cmd.OutOrStdout()
			return pebbleStore.RawEntries(prefix, limit, func(key, value []byte) error {
				printf(out, "%s => %s\n", key, value)
				return nil
			})
		},
	}
	rawCmd.Flags().IntVar(&limit, "limit", 20, "number of keys to display (0 for all)")
	rawCmd.Flags().StringVar(&prefix, "prefix", "book:", "key prefix to inspect")
	diagnosticsCmd.AddCommand(rawCmd)

	return diagnosticsCmd
}
