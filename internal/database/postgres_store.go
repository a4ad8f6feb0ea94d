// file: internal/database/postgres_store.go
// version: 1.1.0
// guid: 6e2c9a47-b1d8-4f35-8c0a-7d4e1b9f3a62

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jdfalk/book-catalog/internal/models"
)

// DefaultPostgresTimeout bounds every statement issued by PostgresStore
const DefaultPostgresTimeout = 5 * time.Second

// PostgreSQL error codes the store translates
const (
	pgNotNullViolation  = "23502"
	pgUniqueViolation   = "23505"
	pgCheckViolation    = "23514"
	pgStringTruncation  = "22001"
	pgNumericOutOfRange = "22003"
)

const pgPrimaryKeyConstraint = "books_pkey"

// PostgresStore implements Store on PostgreSQL with the same constraints as
// the SQLite schema.
type PostgresStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresStore connects to dsn and migrates the database
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" || isMemoryPath(dsn) {
		return nil, fmt.Errorf("postgres requires a connection string, got %q", dsn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPostgresTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{pool: pool, timeout: DefaultPostgresTimeout}
	if err := RunMigrations(store); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate PostgreSQL database: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Backend implements Store
func (s *PostgresStore) Backend() string {
	return BackendPostgres
}

// Close implements Store
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Reset removes every book but keeps the schema
func (s *PostgresStore) Reset() error {
	ctx, cancel := s.withTimeout(context.Background())
	defer cancel()
	if _, err := s.pool.Exec(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("failed to reset books: %w", err)
	}
	return nil
}

// InsertBooks writes the batch in a single transaction
func (s *PostgresStore) InsertBooks(books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(context.Background())
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `INSERT INTO books (` + bookSelectColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	now := time.Now().UTC()
	for _, book := range books {
		if err := checkColumns(book); err != nil {
			return err
		}
		if err := prepareInsert(book, now); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, query,
			book.ID,
			book.Name,
			book.Author,
			book.YearPublished,
			book.BookType,
			book.EffectiveStatus(),
			book.CreatedAt,
		)
		if err != nil {
			return translatePostgresError(err, book.NameOrEmpty())
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBookByName returns the book with the given name, or nil
func (s *PostgresStore) GetBookByName(name string) (*models.Book, error) {
	return s.getBook(`SELECT `+bookSelectColumns+` FROM books WHERE name = $1 LIMIT 1`, name)
}

// GetBookByID returns the book with the given ID, or nil
func (s *PostgresStore) GetBookByID(id string) (*models.Book, error) {
	return s.getBook(`SELECT `+bookSelectColumns+` FROM books WHERE id = $1`, id)
}

func (s *PostgresStore) getBook(query, arg string) (*models.Book, error) {
	ctx, cancel := s.withTimeout(context.Background())
	defer cancel()

	var book models.Book
	err := scanBook(s.pool.QueryRow(ctx, query, arg), &book)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}
	return &book, nil
}

// GetAllBooks returns books ordered by name
func (s *PostgresStore) GetAllBooks(limit, offset int) ([]models.Book, error) {
	ctx, cancel := s.withTimeout(context.Background())
	defer cancel()

	if offset < 0 {
		offset = 0
	}
	// LIMIT NULL means no limit
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := s.pool.Query(ctx, `SELECT `+bookSelectColumns+` FROM books ORDER BY name COLLATE "C" LIMIT $1 OFFSET $2`, limitArg, offset)
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
func (s *PostgresStore) CountBooks() (int, error) {
	ctx, cancel := s.withTimeout(context.Background())
	defer cancel()

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) currentVersion() (int, error) {
	ctx, cancel := s.withTimeout(context.Background())
	defer cancel()

	if _, err := s.pool.Exec(ctx, schemaMigrationsDDL); err != nil {
		return 0, err
	}
	var version int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}

func (s *PostgresStore) applyMigration(m Migration) error {
	ctx, cancel := s.withTimeout(context.Background())
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, stmt := range m.Postgres {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES ($1, $2, $3)`,
		m.Version, m.Description, time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// translatePostgresError maps SQLSTATE codes onto the taxonomy
func translatePostgresError(err error, name string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	cv := &ConstraintViolation{Value: name, Err: err}
	switch pgErr.Code {
	case pgNotNullViolation:
		cv.Kind = NotNull
		cv.Field = pgErr.ColumnName
	case pgUniqueViolation:
		cv.Kind = Unique
		cv.Field = "name"
		if pgErr.ConstraintName == pgPrimaryKeyConstraint {
			cv.Field = "id"
		}
	case pgCheckViolation:
		info, ok := namedConstraints[pgErr.ConstraintName]
		if !ok {
			info = constraintInfo{field: pgErr.ColumnName, kind: Length}
		}
		cv.Kind = info.kind
		cv.Field = info.field
	case pgStringTruncation:
		cv.Kind = Length
		cv.Field = pgErr.ColumnName
	case pgNumericOutOfRange:
		cv.Kind = Range
		cv.Field = "year_published"
	default:
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return cv
}
