// file: internal/database/session_test.go
// version: 1.1.0
// guid: e3a95c18-4f7b-4d20-8b6e-19c0d7f2a845

package database

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jdfalk/book-catalog/internal/logging"
	"github.com/jdfalk/book-catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCommitEmptyIsNoop(t *testing.T) {
	store := &MockStore{}
	sess := NewSession(store)

	require.NoError(t, sess.Commit())
	assert.Equal(t, 0, store.InsertCalls)
}

func TestSessionAddStagesCopies(t *testing.T) {
	var inserted []*models.Book
	store := &MockStore{InsertBooksFunc: func(books []*models.Book) error {
		inserted = books
		for _, b := range books {
			b.ID = "id-" + *b.Name
			b.Status = models.Str(models.StatusAvailable)
			b.CreatedAt = time.Unix(1700000000, 0)
		}
		return nil
	}}
	sess := NewSession(store)

	book := models.NewBook("Original", "Author", 2000, "Fiction")
	sess.Add(book)
	sess.Add(nil)
	*book.Name = "Mutated"
	assert.Equal(t, 1, sess.Pending())

	require.NoError(t, sess.Commit())
	require.Len(t, inserted, 1)
	assert.Equal(t, "Original", *inserted[0].Name)

	// Generated values flow back to the caller's record
	assert.Equal(t, "id-Original", book.ID)
	assert.Equal(t, time.Unix(1700000000, 0), book.CreatedAt)
	require.NotNil(t, book.Status)
	assert.Equal(t, models.StatusAvailable, *book.Status)
	assert.Equal(t, 0, sess.Pending())
}

func TestSessionCommitWrapsStoreErrors(t *testing.T) {
	cv := &ConstraintViolation{Kind: Unique, Field: "name", Value: "Dup"}
	store := &MockStore{InsertBooksFunc: func([]*models.Book) error { return cv }}
	sess := NewSession(store)

	sess.Add(models.NewBook("Dup", "Author", 2000, "Fiction"))
	err := sess.Commit()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit failed")
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.Equal(t, 0, sess.Pending())
}

func TestSessionCommitNonConstraintError(t *testing.T) {
	boom := errors.New("disk I/O error")
	store := &MockStore{InsertBooksFunc: func([]*models.Book) error { return boom }}
	sess := NewSession(store)

	sess.Add(models.NewBook("Book", "Author", 2000, "Fiction"))
	err := sess.Commit()

	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrConstraintViolation))
	assert.Equal(t, 0, sess.Pending())
}

func TestSessionRollback(t *testing.T) {
	store := &MockStore{}
	sess := NewSession(store)

	sess.AddAll([]*models.Book{
		models.NewBook("A", "Author", 2000, "Fiction"),
		models.NewBook("B", "Author", 2000, "Fiction"),
	})
	assert.Equal(t, 2, sess.Pending())

	sess.Rollback()
	assert.Equal(t, 0, sess.Pending())
	require.NoError(t, sess.Commit())
	assert.Equal(t, 0, store.InsertCalls)
}

func TestSessionLookupCachesHitsOnly(t *testing.T) {
	stored := models.NewBook("Cached", "Author", 2000, "Fiction")
	store := &MockStore{GetBookByNameFunc: func(name string) (*models.Book, error) {
		if name == "Cached" {
			return stored.Clone(), nil
		}
		return nil, nil
	}}
	sess := NewSession(store)

	for i := 0; i < 3; i++ {
		got, err := sess.GetBookByName("Cached")
		require.NoError(t, err)
		require.NotNil(t, got)
	}
	assert.Equal(t, 1, store.LookupCalls)

	for i := 0; i < 2; i++ {
		got, err := sess.GetBookByName("Missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 3, store.LookupCalls)

	stats := sess.CacheStats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, 1, stats.Entries)
}

func TestSessionCachedBookIsNotShared(t *testing.T) {
	store := &MockStore{GetBookByNameFunc: func(name string) (*models.Book, error) {
		return models.NewBook(name, "Author", 2000, "Fiction"), nil
	}}
	sess := NewSession(store)

	first, err := sess.GetBookByName("Shared")
	require.NoError(t, err)
	*first.Author = "Vandal"

	second, err := sess.GetBookByName("Shared")
	require.NoError(t, err)
	assert.Equal(t, "Author", *second.Author)
}

func TestSessionCommitInvalidatesCache(t *testing.T) {
	author := "Before"
	store := &MockStore{GetBookByNameFunc: func(name string) (*models.Book, error) {
		return models.NewBook(name, author, 2000, "Fiction"), nil
	}}
	sess := NewSession(store)

	got, err := sess.GetBookByName("Refreshed")
	require.NoError(t, err)
	assert.Equal(t, "Before", *got.Author)

	author = "After"
	sess.Add(models.NewBook("Refreshed", "After", 2000, "Fiction"))
	require.NoError(t, sess.Commit())

	got, err = sess.GetBookByName("Refreshed")
	require.NoError(t, err)
	assert.Equal(t, "After", *got.Author)
	assert.Equal(t, 2, store.LookupCalls)
}

func TestSessionCacheDisabled(t *testing.T) {
	store := &MockStore{GetBookByNameFunc: func(name string) (*models.Book, error) {
		return models.NewBook(name, "Author", 2000, "Fiction"), nil
	}}
	sess := NewSession(store, WithCacheTTL(0))

	for i := 0; i < 3; i++ {
		_, err := sess.GetBookByName("Uncached")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.LookupCalls)
}

func TestSessionLookupError(t *testing.T) {
	store := &MockStore{GetBookByNameFunc: func(string) (*models.Book, error) {
		return nil, errors.New("connection refused")
	}}
	sess := NewSession(store)

	got, err := sess.GetBookByName("Any")
	assert.Nil(t, got)
	assert.ErrorContains(t, err, "connection refused")
}

func TestSessionCommitLogsSingleRecordID(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Level()
	logging.SetOutput(&buf)
	logging.SetLevel(logging.DebugLevel)
	t.Cleanup(func() {
		logging.SetOutput(os.Stderr)
		logging.SetLevel(prev)
	})

	store := &MockStore{InsertBooksFunc: func(books []*models.Book) error {
		books[0].ID = "id-solo"
		return nil
	}}
	sess := NewSession(store)

	sess.Add(models.NewBook("Solo", "Author", 2001, "Fiction"))
	require.NoError(t, sess.Commit())

	out := buf.String()
	assert.Contains(t, out, "[START] commit [mock] (resource: Solo)")
	assert.Contains(t, out, "(resource: id-solo)")

	// Multi-record commits carry no single resource
	buf.Reset()
	sess.AddAll([]*models.Book{
		models.NewBook("One", "Author", 2001, "Fiction"),
		models.NewBook("Two", "Author", 2002, "Fiction"),
	})
	require.NoError(t, sess.Commit())
	assert.NotContains(t, buf.String(), "resource:")
}
