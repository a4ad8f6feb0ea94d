// file: internal/database/schema.go
// version: 1.0.0
// guid: 3d9f6b21-8a4c-4e07-bc53-1f7e2a9d6c48

package database

import (
	"fmt"
	"strings"

	"github.com/jdfalk/book-catalog/internal/models"
)

const booksTable = "books"

type constraintInfo struct {
	field string
	kind  ConstraintKind
}

// Named constraints shared by the SQL schemas. Driver errors carry these
// names, which is how a failure is traced back to a column.
var namedConstraints = map[string]constraintInfo{
	"uq_books_name":                 {field: "name", kind: Unique},
	"ck_books_name_length":          {field: "name", kind: Length},
	"ck_books_author_length":        {field: "author", kind: Length},
	"ck_books_year_published_range": {field: "year_published", kind: Range},
	"ck_books_book_type_length":     {field: "book_type", kind: Length},
	"ck_books_status_length":        {field: "status", kind: Length},
}

// booksTableDDL renders the books table; lengthFn is the dialect's
// character-count function and intType/timeType its column types.
func booksTableDDL(lengthFn, intType, timeType string) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		author TEXT NOT NULL,
		year_published %[2]s NOT NULL,
		book_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '%[4]s',
		created_at %[3]s NOT NULL,
		CONSTRAINT uq_books_name UNIQUE (name),
		CONSTRAINT ck_books_name_length CHECK (%[1]s(name) <= %[5]d),
		CONSTRAINT ck_books_author_length CHECK (%[1]s(author) <= %[6]d),
		CONSTRAINT ck_books_year_published_range CHECK (year_published BETWEEN %[7]d AND %[8]d),
		CONSTRAINT ck_books_book_type_length CHECK (%[1]s(book_type) <= %[9]d),
		CONSTRAINT ck_books_status_length CHECK (%[1]s(status) <= %[10]d)
	)`,
		lengthFn, intType, timeType, models.StatusAvailable,
		models.NameMaxLength, models.AuthorMaxLength,
		models.MinYear, models.MaxYear,
		models.BookTypeMaxLength, models.StatusMaxLength,
	)
}

const bookSelectColumns = `id, name, author, year_published, book_type, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(scanner rowScanner, book *models.Book) error {
	var name, author, bookType, status string
	var year int64
	if err := scanner.Scan(&book.ID, &name, &author, &year, &bookType, &status, &book.CreatedAt); err != nil {
		return err
	}
	book.Name = models.Str(name)
	book.Author = models.Str(author)
	book.YearPublished = models.Int64(year)
	book.BookType = models.Str(bookType)
	book.Status = models.Str(status)
	return nil
}

// columnAfterTable extracts "name" from driver text like
// "NOT NULL constraint failed: books.name".
func columnAfterTable(msg string) string {
	i := strings.Index(msg, booksTable+".")
	if i < 0 {
		return ""
	}
	col := msg[i+len(booksTable)+1:]
	if j := strings.IndexAny(col, " ,)"); j >= 0 {
		col = col[:j]
	}
	return col
}

// constraintFromMessage finds a named constraint mentioned in msg
func constraintFromMessage(msg string) (constraintInfo, bool) {
	for name, info := range namedConstraints {
		if strings.Contains(msg, name) {
			return info, true
		}
	}
	return constraintInfo{}, false
}
