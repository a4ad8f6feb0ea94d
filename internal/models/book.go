// file: internal/models/book.go
// version: 1.0.0
// guid: 2f6c1a94-7e3b-4d58-9a0e-5b8c3d1f7e26

package models

import "time"

// Column bounds enforced by every store at commit time
const (
	NameMaxLength     = 255
	AuthorMaxLength   = 255
	BookTypeMaxLength = 64
	StatusMaxLength   = 32

	MinYear = 1
	MaxYear = 9999
)

// Status values
const (
	StatusAvailable = "available"
	StatusBorrowed  = "borrowed"
)

// Book is a single catalog record.
//
// Pointer fields map to nullable columns: a nil pointer is stored as NULL,
// so a record missing a required field can be built and staged freely and
// is only rejected when it is committed.
type Book struct {
	ID            string    `json:"id" yaml:"id,omitempty" db:"id"` // ULID, assigned on insert
	Name          *string   `json:"name" yaml:"name" db:"name"`
	Author        *string   `json:"author" yaml:"author" db:"author"`
	YearPublished *int64    `json:"year_published" yaml:"year_published" db:"year_published"`
	BookType      *string   `json:"book_type" yaml:"book_type" db:"book_type"`
	Status        *string   `json:"status,omitempty" yaml:"status,omitempty" db:"status"`
	CreatedAt     time.Time `json:"created_at" yaml:"-" db:"created_at"`
}

// NewBook builds a book with every required field set and no status.
func NewBook(name, author string, yearPublished int64, bookType string) *Book {
	return &Book{
		Name:          Str(name),
		Author:        Str(author),
		YearPublished: Int64(yearPublished),
		BookType:      Str(bookType),
	}
}

// EffectiveStatus returns the stored status, or StatusAvailable when unset
func (b *Book) EffectiveStatus() string {
	if b.Status == nil {
		return StatusAvailable
	}
	return *b.Status
}

// NameOrEmpty dereferences Name for logging and cache keys
func (b *Book) NameOrEmpty() string {
	if b.Name == nil {
		return ""
	}
	return *b.Name
}

// Clone returns a deep copy so staged records are not affected by later
// mutation of the caller's value.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	out := *b
	out.Name = cloneStr(b.Name)
	out.Author = cloneStr(b.Author)
	out.BookType = cloneStr(b.BookType)
	out.Status = cloneStr(b.Status)
	if b.YearPublished != nil {
		out.YearPublished = Int64(*b.YearPublished)
	}
	return &out
}

// Str returns a pointer to s
func Str(s string) *string { return &s }

// Int64 returns a pointer to n
func Int64(n int64) *int64 { return &n }

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	return Str(*s)
}
