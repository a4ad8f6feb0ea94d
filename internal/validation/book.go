// file: internal/validation/book.go
// version: 1.0.0
// guid: 8e3b5c07-1d4f-4a96-b2c8-6f0e9a3d7b54

// Package validation checks a book against the column rules the SQL
// schemas enforce, for stores that have no schema of their own.
//
// It never rewrites or escapes input: markup and SQL fragments are plain
// text here and only fail when they break a null, length or range rule.
package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jdfalk/book-catalog/internal/models"
)

// Rule is the class of column rule a value broke
type Rule string

const (
	RuleNotNull Rule = "not_null"
	RuleLength  Rule = "length"
	RuleRange   Rule = "range"
)

// Violation describes one broken column rule
type Violation struct {
	Field string
	Rule  Rule
	Tag   string // validator tag that failed, e.g. "max"
	Err   error
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s rule failed (%s)", v.Field, v.Rule, v.Tag)
}

func (v Violation) Unwrap() error {
	return v.Err
}

type column struct {
	name    string
	numeric bool
	tag     string
	value   func(b *models.Book) any
	isNil   func(b *models.Book) bool
}

// Nil pointers fail any non-omitempty tag, so the not-null rule needs no
// tag of its own; the nil check below tells it apart from length/range.
var columns = []column{
	{
		name:  "name",
		tag:   fmt.Sprintf("max=%d", models.NameMaxLength),
		value: func(b *models.Book) any { return b.Name },
		isNil: func(b *models.Book) bool { return b.Name == nil },
	},
	{
		name:  "author",
		tag:   fmt.Sprintf("max=%d", models.AuthorMaxLength),
		value: func(b *models.Book) any { return b.Author },
		isNil: func(b *models.Book) bool { return b.Author == nil },
	},
	{
		name:    "year_published",
		numeric: true,
		tag:     fmt.Sprintf("min=%d,max=%d", models.MinYear, models.MaxYear),
		value:   func(b *models.Book) any { return b.YearPublished },
		isNil:   func(b *models.Book) bool { return b.YearPublished == nil },
	},
	{
		name:  "book_type",
		tag:   fmt.Sprintf("max=%d", models.BookTypeMaxLength),
		value: func(b *models.Book) any { return b.BookType },
		isNil: func(b *models.Book) bool { return b.BookType == nil },
	},
	{
		name:  "status",
		tag:   fmt.Sprintf("omitempty,max=%d", models.StatusMaxLength),
		value: func(b *models.Book) any { return b.Status },
		isNil: func(b *models.Book) bool { return false },
	},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Book returns the first violation in column order, or nil.
func Book(b *models.Book) *Violation {
	for _, c := range columns {
		if v := check(c, b); v != nil {
			return v
		}
	}
	return nil
}

// All returns every violation on b, in column order.
func All(b *models.Book) []Violation {
	var out []Violation
	for _, c := range columns {
		if v := check(c, b); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func check(c column, b *models.Book) *Violation {
	err := instance().Var(c.value(b), c.tag)
	if err == nil {
		return nil
	}

	tag := "unknown"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		tag = verrs[0].Tag()
	}

	rule := RuleLength
	switch {
	case c.isNil(b):
		rule = RuleNotNull
		tag = "not_null"
	case c.numeric:
		rule = RuleRange
	}
	return &Violation{Field: c.name, Rule: rule, Tag: tag, Err: err}
}
