// file: internal/database/session.go
// version: 1.1.0
// guid: c47e1b92-5d3a-4f68-a0b9-2e8d6c1f4a73

package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/jdfalk/book-catalog/internal/cache"
	"github.com/jdfalk/book-catalog/internal/logging"
	"github.com/jdfalk/book-catalog/internal/matcher"
	"github.com/jdfalk/book-catalog/internal/metrics"
	"github.com/jdfalk/book-catalog/internal/models"
)

// DefaultCacheTTL is how long a name lookup is served from memory
const DefaultCacheTTL = 30 * time.Second

const nameCache = "books_by_name"

// Session stages new books and commits them to a Store as one unit.
//
// Nothing is checked when a record is staged. Commit hands the whole batch
// to the store, which either persists every record or none. A failed
// commit discards the batch: callers rebuild and resubmit.
type Session struct {
	store Store
	names *cache.Cache[*models.Book]

	mu        sync.Mutex
	staged    []*models.Book
	originals []*models.Book
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithCacheTTL sets the name cache TTL; zero or less disables the cache
func WithCacheTTL(ttl time.Duration) SessionOption {
	return func(s *Session) {
		s.names = cache.New[*models.Book](ttl)
	}
}

// NewSession returns a gateway over store
func NewSession(store Store, opts ...SessionOption) *Session {
	s := &Session{
		store: store,
		names: cache.New[*models.Book](DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backend behind the session
func (s *Session) Store() Store {
	return s.store
}

// Add stages a copy of book for the next Commit. It never fails.
func (s *Session) Add(book *models.Book) {
	if book == nil {
		return
	}
	s.mu.Lock()
	s.staged = append(s.staged, book.Clone())
	s.originals = append(s.originals, book)
	s.mu.Unlock()
	metrics.AddStaged(1)
}

// AddAll stages every book in order
func (s *Session) AddAll(books []*models.Book) {
	for _, b := range books {
		s.Add(b)
	}
}

// Pending returns the number of staged records
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// Rollback drops every staged record
func (s *Session) Rollback() {
	s.mu.Lock()
	n := len(s.staged)
	s.staged, s.originals = nil, nil
	s.mu.Unlock()
	if n > 0 {
		logging.Debugf("[DB] Rolled back %d staged books", n)
	}
}

// Commit persists the staged batch. The batch is cleared whether or not the
// store accepts it. On success the generated ID, status and creation time
// are copied back into the records passed to Add.
func (s *Session) Commit() error {
	s.mu.Lock()
	staged, originals := s.staged, s.originals
	s.staged, s.originals = nil, nil
	s.mu.Unlock()

	if len(staged) == 0 {
		return nil
	}

	backend := s.store.Backend()
	op := logging.NewOperationLogger("commit", backend)
	op.AddDetail("records", len(staged))
	if len(staged) == 1 {
		op.SetResourceID(staged[0].NameOrEmpty())
	}
	op.LogStart()

	err := s.store.InsertBooks(staged)
	metrics.ObserveCommitDuration(backend, op.Elapsed())
	logging.LogDatabaseOperation("INSERT", booksTable, op.Elapsed(), len(staged), err)

	if err != nil {
		kind := "error"
		if cv, ok := IsConstraintViolation(err); ok {
			kind = string(cv.Kind)
			logging.LogValidationError("commit", cv.Field, string(cv.Kind))
		}
		metrics.IncCommitFailure(backend, kind)
		op.LogError(err)
		return fmt.Errorf("commit failed: %w", err)
	}

	names := make([]string, 0, len(staged))
	for i, book := range staged {
		orig := originals[i]
		orig.ID = book.ID
		orig.CreatedAt = book.CreatedAt
		if orig.Status == nil {
			orig.Status = models.Str(book.EffectiveStatus())
		}
		names = append(names, book.NameOrEmpty())
	}
	s.names.Invalidate(names...)

	metrics.IncCommit(backend)
	if count, err := s.store.CountBooks(); err == nil {
		metrics.SetBooks(count)
	} else {
		logging.Warnf("[DB] Failed to count books after commit: %v", err)
	}

	if len(staged) == 1 {
		op.SetResourceID(staged[0].ID)
	}
	op.LogSuccess()
	return nil
}

// GetBookByName returns the stored book with the given name, or nil.
// Hits are cached; misses always go to the store.
func (s *Session) GetBookByName(name string) (*models.Book, error) {
	if book, ok := s.names.Get(name); ok {
		logging.LogCacheHit(nameCache, name)
		return book.Clone(), nil
	}
	logging.LogCacheMiss(nameCache, name)

	book, err := s.store.GetBookByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get book %q: %w", name, err)
	}
	if book == nil {
		return nil, nil
	}
	s.names.Set(name, book.Clone())
	return book, nil
}

// FindSimilar returns up to limit stored names that resemble name
func (s *Session) FindSimilar(name string, limit int) ([]string, error) {
	books, err := s.store.GetAllBooks(0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	names := make([]string, 0, len(books))
	for i := range books {
		names = append(names, books[i].NameOrEmpty())
	}

	matches := matcher.RankNames(name, names, limit)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Name)
	}
	return out, nil
}

// CacheStats reports name cache effectiveness
func (s *Session) CacheStats() cache.Stats {
	return s.names.Stats()
}

// Reset empties the store, the staged batch and the cache
func (s *Session) Reset() error {
	s.Rollback()
	s.names.InvalidateAll()
	if err := s.store.Reset(); err != nil {
		return err
	}
	metrics.SetBooks(0)
	return nil
}
