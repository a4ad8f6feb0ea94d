// file: cmd/books.go
// version: 1.0.0
// guid: 4d2e8b17-a3c9-4f60-9e71-5b0c6d8f2a19

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jdfalk/book-catalog/internal/models"
	"github.com/spf13/cobra"
)

const similarSuggestions = 3

func newAddCmd() *cobra.Command {
	var (
		author   string
		year     int64
		bookType string
		status   string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a book and commit it",
		Long: `Add stages one book and commits it immediately.

Flags that are not given are stored as NULL, so leaving out --author, --year
or --type makes the commit fail with a not-null violation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book := &models.Book{Name: models.Str(args[0])}
			flags := cmd.Flags()
			if flags.Changed("author") {
				book.Author = models.Str(author)
			}
			if flags.Changed("year") {
				book.YearPublished = models.Int64(year)
			}
			if flags.Changed("type") {
				book.BookType = models.Str(bookType)
			}
			if flags.Changed("status") {
				book.Status = models.Str(status)
			}

			sess, closeStore, err := openSession()
			if err != nil {
				return err
			}
			defer closeStore()

			sess.Add(book)
			if err := sess.Commit(); err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "Added %q (id %s)\n", args[0], book.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author name")
	cmd.Flags().Int64Var(&year, "year", 0, "year published")
	cmd.Flags().StringVar(&bookType, "type", "", "book type, e.g. Fiction")
	cmd.Flags().StringVar(&status, "status", "", "status (default \"available\")")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Look up a book by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeStore, err := openSession()
			if err != nil {
				return err
			}
			defer closeStore()

			name := args[0]
			book, err := sess.GetBookByName(name)
			if err != nil {
				return err
			}
			if book != nil {
				printBook(cmd.OutOrStdout(), book)
				return nil
			}

			similar, err := sess.FindSimilar(name, similarSuggestions)
			if err != nil {
				return err
			}
			if len(similar) > 0 {
				printf(cmd.OutOrStdout(), "Did you mean: %s\n", strings.Join(quoteAll(similar), ", "))
			}
			return fmt.Errorf("book %q not found", name)
		},
	}
}

func newListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeStore, err := openSession()
			if err != nil {
				return err
			}
			defer closeStore()

			books, err := sess.Store().GetAllBooks(limit, offset)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tAUTHOR\tYEAR\tTYPE\tSTATUS")
			for i := range books {
				b := &books[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					formatValue(b.Name), formatValue(b.Author), formatYear(b.YearPublished),
					formatValue(b.BookType), b.EffectiveStatus())
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%d books\n", len(books))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of books (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of books to skip")
	return cmd
}

func printBook(w io.Writer, book *models.Book) {
	printField(w, "ID", book.ID)
	printField(w, "Name", formatValue(book.Name))
	printField(w, "Author", formatValue(book.Author))
	printField(w, "Year", formatYear(book.YearPublished))
	printField(w, "Type", formatValue(book.BookType))
	printField(w, "Status", book.EffectiveStatus())
	if !book.CreatedAt.IsZero() {
		printField(w, "Created", book.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
}

func printField(w io.Writer, label, value string) {
	printf(w, "%-8s %s\n", label+":", value)
}

func formatValue(s *string) string {
	if s == nil {
		return "(null)"
	}
	if strings.TrimSpace(*s) == "" {
		return "(empty)"
	}
	return *s
}

func formatYear(y *int64) string {
	if y == nil {
		return "(null)"
	}
	return fmt.Sprintf("%d", *y)
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
