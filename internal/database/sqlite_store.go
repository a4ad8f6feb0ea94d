// file: internal/database/sqlite_store.go
// version: 2.1.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jdfalk/book-catalog/internal/models"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on SQLite. The schema is the source of truth
// for every rule, so records are written as given and driver errors are
// translated into ConstraintViolation values.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens the database at path and migrates it. An empty path
// or ":memory:" yields an ephemeral database that disappears on Close.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path
	if isMemoryPath(path) {
		dsn = MemoryPath
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Every connection to :memory: is a separate database, so pin one
	if isMemoryPath(path) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db, path: dsn}
	if err := RunMigrations(store); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return store, nil
}

// Backend implements Store
func (s *SQLiteStore) Backend() string {
	return BackendSQLite
}

// Close implements Store
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Reset removes every book but keeps the schema
func (s *SQLiteStore) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM books`); err != nil {
		return fmt.Errorf("failed to reset books: %w", err)
	}
	return nil
}

// InsertBooks writes the batch in a single transaction
func (s *SQLiteStore) InsertBooks(books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`INSERT INTO books (` + bookSelectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, book := range books {
		if err := checkColumns(book); err != nil {
			return err
		}
		if err := prepareInsert(book, now); err != nil {
			return err
		}
		// Status is bound explicitly; prepareInsert has already applied the default
		_, err := stmt.Exec(
			book.ID,
			nullableString(book.Name),
			nullableString(book.Author),
			nullableInt64(book.YearPublished),
			nullableString(book.BookType),
			book.EffectiveStatus(),
			book.CreatedAt,
		)
		if err != nil {
			return translateSQLiteError(err, book.NameOrEmpty())
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBookByName returns the book with the given name, or nil
func (s *SQLiteStore) GetBookByName(name string) (*models.Book, error) {
	return s.getBook(`SELECT `+bookSelectColumns+` FROM books WHERE name = ? LIMIT 1`, name)
}

// GetBookByID returns the book with the given ID, or nil
func (s *SQLiteStore) GetBookByID(id string) (*models.Book, error) {
	return s.getBook(`SELECT `+bookSelectColumns+` FROM books WHERE id = ?`, id)
}

func (s *SQLiteStore) getBook(query string, arg string) (*models.Book, error) {
	var book models.Book
	err := scanBook(s.db.QueryRow(query, arg), &book)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}
	return &book, nil
}

// GetAllBooks returns books ordered by name
func (s *SQLiteStore) GetAllBooks(limit, offset int) ([]models.Book, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(`SELECT `+bookSelectColumns+` FROM books ORDER BY name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		if err := scanBook(rows, &book); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// CountBooks returns the number of stored books
func (s *SQLiteStore) CountBooks() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) currentVersion() (int, error) {
	if _, err := s.db.Exec(schemaMigrationsDDL); err != nil {
		return 0, err
	}
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}

func (s *SQLiteStore) applyMigration(m Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range m.SQLite {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// translateSQLiteError maps a constraint failure onto the taxonomy. Other
// errors are wrapped unchanged.
func translateSQLiteError(err error, name string) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	cv := &ConstraintViolation{Value: name, Err: err}
	msg := sqliteErr.Error()
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintNotNull:
		cv.Kind = NotNull
		cv.Field = columnAfterTable(msg)
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		cv.Kind = Unique
		cv.Field = columnAfterTable(msg)
	case sqlite3.ErrConstraintCheck:
		info, ok := constraintFromMessage(msg)
		if !ok {
			info = constraintInfo{kind: Length}
		}
		cv.Kind = info.kind
		cv.Field = info.field
	default:
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return cv
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
