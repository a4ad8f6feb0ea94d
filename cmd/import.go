// file: cmd/import.go
// version: 1.0.0
// guid: 8f3a1c65-d27b-4e94-a0c8-6e9b4d2f7c31

package cmd

import (
	"fmt"
	"os"

	"github.com/jdfalk/book-catalog/internal/models"
	"github.com/jdfalk/book-catalog/internal/validation"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// loadFixture reads books from a YAML file holding either a list of books
// or a mapping with a "books" key.
func loadFixture(path string) ([]*models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Books []*models.Book `yaml:"books"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Books) > 0 {
		return doc.Books, nil
	}

	var books []*models.Book
	if err := yaml.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%s contains no books", path)
	}
	return books, nil
}

func newImportCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import books from a YAML file in one commit",
		Long: `Import stages every book in FILE and commits them together. If any
record breaks a rule, nothing from the file is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := loadFixture(args[0])
			if err != nil {
				return err
			}

			sess, closeStore, err := openSession()
			if err != nil {
				return err
			}
			defer closeStore()

			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.NewOptions(len(books),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("Staging books"),
					progressbar.OptionShowCount(),
				)
			}
			for _, book := range books {
				sess.Add(book)
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}

			if err := sess.Commit(); err != nil {
				return fmt.Errorf("import of %s rejected: %w", args[0], err)
			}

			printf(cmd.OutOrStdout(), "Imported %d books from %s\n", len(books), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Report every rule a YAML file of books breaks, without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := loadFixture(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			seen := make(map[string]int, len(books))
			for i, book := range books {
				problems := validation.All(book)
				var dupOf int
				if book.Name != nil {
					if first, ok := seen[*book.Name]; ok {
						dupOf = first
					} else {
						seen[*book.Name] = i + 1
					}
				}
				if len(problems) == 0 && dupOf == 0 {
					continue
				}

				failed++
				printf(out, "record %d (%s):\n", i+1, formatValue(book.Name))
				for _, p := range problems {
					printf(out, "  %s: %s rule failed (%s)\n", p.Field, p.Rule, p.Tag)
				}
				if dupOf > 0 {
					printf(out, "  name: unique rule failed (same name as record %d)\n", dupOf)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d records failed checks", failed, len(books))
			}
			printf(out, "All %d records pass\n", len(books))
			return nil
		},
	}
}
