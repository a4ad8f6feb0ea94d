// file: internal/database/store.go
// version: 3.1.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package database

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/jdfalk/book-catalog/internal/models"
	"github.com/jdfalk/book-catalog/internal/validation"
	ulid "github.com/oklog/ulid/v2"
)

// Store defines the backend contract behind a Session.
// SQLite is the default; PebbleDB and PostgreSQL are opt-in.
type Store interface {
	// Lifecycle
	Backend() string
	Close() error
	Reset() error

	// InsertBooks applies every rule to the batch and writes it atomically:
	// either all records become durable or none do. On success each record
	// has its ID, CreatedAt and Status filled in.
	InsertBooks(books []*models.Book) error

	// Lookups return (nil, nil) when nothing matches
	GetBookByName(name string) (*models.Book, error)
	GetBookByID(id string) (*models.Book, error)

	// GetAllBooks returns books ordered by name; limit <= 0 means no limit
	GetAllBooks(limit, offset int) ([]models.Book, error)
	CountBooks() (int, error)
}

// Backend names accepted by NewStore
const (
	BackendSQLite   = "sqlite"
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

// MemoryPath selects an ephemeral store that lives as long as the process
const MemoryPath = ":memory:"

// Global store instance
var GlobalStore Store

// NewStore opens the backend named by dbType at path and brings its schema
// up to date.
func NewStore(dbType, path string) (Store, error) {
	switch dbType {
	case BackendSQLite, "sqlite3", "":
		return NewSQLiteStore(path)
	case BackendPebble:
		return NewPebbleStore(path)
	case BackendPostgres, "postgresql", "pg":
		return NewPostgresStore(path)
	default:
		return nil, fmt.Errorf("unsupported database type: %s (supported: sqlite, pebble, postgres)", dbType)
	}
}

// InitializeStore opens the configured store and installs it as GlobalStore
func InitializeStore(dbType, path string) error {
	store, err := NewStore(dbType, path)
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", dbType, err)
	}
	GlobalStore = store
	return nil
}

// CloseStore closes the global store
func CloseStore() error {
	if GlobalStore == nil {
		return nil
	}
	err := GlobalStore.Close()
	GlobalStore = nil
	return err
}

func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// prepareInsert assigns the values every backend fills in before writing
func prepareInsert(book *models.Book, now time.Time) error {
	if book.ID == "" {
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate book id: %w", err)
		}
		book.ID = id
	}
	if book.Status == nil {
		book.Status = models.Str(models.StatusAvailable)
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	return nil
}

// checkColumns applies the column rules before a row reaches a backend.
// SQLite's length() stops at the first NUL byte, so the CHECK constraints
// alone do not bound every value.
func checkColumns(book *models.Book) error {
	if v := validation.Book(book); v != nil {
		return violationFromValidation(v, book.NameOrEmpty())
	}
	return nil
}

func violationFromValidation(v *validation.Violation, name string) error {
	kind := Length
	switch v.Rule {
	case validation.RuleNotNull:
		kind = NotNull
	case validation.RuleRange:
		kind = Range
	}
	return &ConstraintViolation{Kind: kind, Field: v.Field, Value: name, Err: v}
}

func isMemoryPath(path string) bool {
	return path == "" || path == MemoryPath
}
