// file: internal/validation/book_test.go
// version: 1.0.0
// guid: 2b7f4e90-c13a-4d68-8e25-6a9d0f1c3b74

package validation

import (
	"strings"
	"testing"

	"github.com/jdfalk/book-catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookAcceptsValidRecords(t *testing.T) {
	tests := []struct {
		name string
		book *models.Book
	}{
		{name: "typical", book: models.NewBook("Dune", "Frank Herbert", 1965, "Science Fiction")},
		{name: "empty strings", book: models.NewBook("", "", 1, "")},
		{name: "max lengths in runes", book: models.NewBook(strings.Repeat("é", models.NameMaxLength), strings.Repeat("ß", models.AuthorMaxLength), models.MaxYear, strings.Repeat("t", models.BookTypeMaxLength))},
		{name: "injection text", book: models.NewBook("Book7'; DROP TABLE books; --", "Author", 2024, "Fiction")},
		{name: "markup", book: models.NewBook("<script>alert('XSS')</script>", "Author", 2024, "Fiction")},
		{name: "explicit status", book: func() *models.Book {
			b := models.NewBook("Lent", "Author", 2000, "Fiction")
			b.Status = models.Str(models.StatusBorrowed)
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Book(tt.book))
			assert.Empty(t, All(tt.book))
		})
	}
}

func TestBookReportsFirstViolation(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(b *models.Book)
		field string
		rule  Rule
	}{
		{name: "nil name", mod: func(b *models.Book) { b.Name = nil }, field: "name", rule: RuleNotNull},
		{name: "nil author", mod: func(b *models.Book) { b.Author = nil }, field: "author", rule: RuleNotNull},
		{name: "nil year", mod: func(b *models.Book) { b.YearPublished = nil }, field: "year_published", rule: RuleNotNull},
		{name: "nil book type", mod: func(b *models.Book) { b.BookType = nil }, field: "book_type", rule: RuleNotNull},
		{name: "long name", mod: func(b *models.Book) { b.Name = models.Str(strings.Repeat("Book9", 1000)) }, field: "name", rule: RuleLength},
		{name: "long author", mod: func(b *models.Book) { b.Author = models.Str(strings.Repeat("A", 1000)) }, field: "author", rule: RuleLength},
		{name: "huge year", mod: func(b *models.Book) { b.YearPublished = models.Int64(2024202420242024) }, field: "year_published", rule: RuleRange},
		{name: "year zero", mod: func(b *models.Book) { b.YearPublished = models.Int64(0) }, field: "year_published", rule: RuleRange},
		{name: "long status", mod: func(b *models.Book) { b.Status = models.Str(strings.Repeat("s", 33)) }, field: "status", rule: RuleLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := models.NewBook("Book", "Author", 2000, "Fiction")
			tt.mod(book)

			v := Book(book)
			require.NotNil(t, v)
			assert.Equal(t, tt.field, v.Field)
			assert.Equal(t, tt.rule, v.Rule)
			assert.Error(t, v.Err)
			assert.Contains(t, v.Error(), tt.field)
		})
	}
}

func TestAllCollectsEveryViolation(t *testing.T) {
	book := &models.Book{
		Author:        models.Str(strings.Repeat("A", 1000)),
		YearPublished: models.Int64(-1),
	}

	got := All(book)
	require.Len(t, got, 4)
	assert.Equal(t, Violation{Field: "name", Rule: RuleNotNull, Tag: "not_null", Err: got[0].Err}, got[0])
	assert.Equal(t, "author", got[1].Field)
	assert.Equal(t, RuleLength, got[1].Rule)
	assert.Equal(t, "max", got[1].Tag)
	assert.Equal(t, "year_published", got[2].Field)
	assert.Equal(t, "min", got[2].Tag)
	assert.Equal(t, "book_type", got[3].Field)
	assert.Equal(t, RuleNotNull, got[3].Rule)
}
