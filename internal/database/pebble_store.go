// file: internal/database/pebble_store.go
// version: 2.1.0
// guid: 5f6a7b8c-9d0e-1f2a-3b4c-5d6e7f8a9b0c

package database

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/jdfalk/book-catalog/internal/models"
)

// PebbleStore implements Store on PebbleDB.
//
// Key layout:
//
//	book:id:<id>         -> Book JSON
//	book:name:<name>     -> id
//	meta:schema_version  -> applied migration version
//
// Pebble has no schema, so every rule is checked in Go before the batch is
// written.
type PebbleStore struct {
	db *pebble.DB
	mu sync.Mutex // serializes the name check with the write that depends on it
}

const (
	pebbleBookIDPrefix   = "book:id:"
	pebbleBookNamePrefix = "book:name:"
	pebbleSchemaKey      = "meta:schema_version"
	pebbleMemDir         = "book-catalog"
)

// NewPebbleStore opens PebbleDB at path and migrates it. An empty path or
// ":memory:" keeps everything in an in-memory filesystem.
func NewPebbleStore(path string) (*PebbleStore, error) {
	opts := &pebble.Options{}
	if isMemoryPath(path) {
		opts.FS = vfs.NewMem()
		path = pebbleMemDir
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}

	store := &PebbleStore{db: db}
	if err := RunMigrations(store); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate PebbleDB: %w", err)
	}
	return store, nil
}

// Backend implements Store
func (p *PebbleStore) Backend() string {
	return BackendPebble
}

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

// Reset deletes every book key; the schema version is kept
func (p *PebbleStore) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.db.DeleteRange([]byte("book:"), []byte("book;"), pebble.Sync); err != nil {
		return fmt.Errorf("failed to reset books: %w", err)
	}
	return nil
}

// InsertBooks validates the whole batch, then writes it with one pebble.Batch
func (p *PebbleStore) InsertBooks(books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]struct{}, len(books))
	seenIDs := make(map[string]struct{}, len(books))
	for _, book := range books {
		if err := checkColumns(book); err != nil {
			return err
		}

		name := *book.Name
		if _, dup := seen[name]; dup {
			return duplicateName(name)
		}
		seen[name] = struct{}{}

		// IDs are normally generated below; a caller-set one must be free
		if book.ID != "" {
			if _, dup := seenIDs[book.ID]; dup {
				return duplicateID(book.ID, name)
			}
			seenIDs[book.ID] = struct{}{}

			taken, err := p.has([]byte(pebbleBookIDPrefix + book.ID))
			if err != nil {
				return fmt.Errorf("failed to check id: %w", err)
			}
			if taken {
				return duplicateID(book.ID, name)
			}
		}

		exists, err := p.has([]byte(pebbleBookNamePrefix + name))
		if err != nil {
			return fmt.Errorf("failed to check name index: %w", err)
		}
		if exists {
			return duplicateName(name)
		}
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	now := time.Now().UTC()
	for _, book := range books {
		if err := prepareInsert(book, now); err != nil {
			return err
		}
		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("failed to encode book: %w", err)
		}
		if err := batch.Set([]byte(pebbleBookIDPrefix+book.ID), data, nil); err != nil {
			return err
		}
		if err := batch.Set([]byte(pebbleBookNamePrefix+*book.Name), []byte(book.ID), nil); err != nil {
			return err
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// GetBookByName resolves the name index, or returns nil
func (p *PebbleStore) GetBookByName(name string) (*models.Book, error) {
	value, closer, err := p.db.Get([]byte(pebbleBookNamePrefix + name))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := string(value)
	closer.Close()

	return p.GetBookByID(id)
}

// GetBookByID returns the book stored under id, or nil
func (p *PebbleStore) GetBookByID(id string) (*models.Book, error) {
	value, closer, err := p.db.Get([]byte(pebbleBookIDPrefix + id))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var book models.Book
	if err := json.Unmarshal(value, &book); err != nil {
		return nil, fmt.Errorf("failed to decode book %s: %w", id, err)
	}
	return &book, nil
}

// GetAllBooks walks the name index, which keeps results ordered by name
func (p *PebbleStore) GetAllBooks(limit, offset int) ([]models.Book, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(pebbleBookNamePrefix),
		UpperBound: prefixUpperBound(pebbleBookNamePrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var books []models.Book
	skipped := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(books) >= limit {
			break
		}
		book, err := p.GetBookByID(string(iter.Value()))
		if err != nil {
			return nil, err
		}
		if book != nil {
			books = append(books, *book)
		}
	}
	return books, iter.Error()
}

// CountBooks counts the primary keys
func (p *PebbleStore) CountBooks() (int, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(pebbleBookIDPrefix),
		UpperBound: prefixUpperBound(pebbleBookIDPrefix),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, iter.Error()
}

func (p *PebbleStore) currentVersion() (int, error) {
	value, closer, err := p.db.Get([]byte(pebbleSchemaKey))
	if err == pebble.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	return strconv.Atoi(string(value))
}

func (p *PebbleStore) applyMigration(m Migration) error {
	return p.db.Set([]byte(pebbleSchemaKey), []byte(strconv.Itoa(m.Version)), pebble.Sync)
}

func (p *PebbleStore) has(key []byte) (bool, error) {
	_, closer, err := p.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

// prefixUpperBound bumps the last byte so the bound covers the prefix
func prefixUpperBound(prefix string) []byte {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return b[:i+1]
		}
	}
	return nil
}

func duplicateName(name string) error {
	return &ConstraintViolation{
		Kind:  Unique,
		Field: "name",
		Value: name,
		Err:   fmt.Errorf("name %q already exists", name),
	}
}

func duplicateID(id, name string) error {
	return &ConstraintViolation{
		Kind:  Unique,
		Field: "id",
		Value: name,
		Err:   fmt.Errorf("id %q already exists", id),
	}
}

// RawEntries calls fn with up to limit keys under prefix, in key order.
// A limit of zero or less visits every key.
func (p *PebbleStore) RawEntries(prefix string, limit int, fn func(key, value []byte) error) error {
	opts := &pebble.IterOptions{}
	if prefix != "" {
		opts.LowerBound = []byte(prefix)
		opts.UpperBound = prefixUpperBound(prefix)
	}
	iter, err := p.db.NewIter(opts)
	if err != nil {
		return err
	}
	defer iter.Close()

	seen := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && seen >= limit {
			break
		}
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
		seen++
	}
	return iter.Error()
}
