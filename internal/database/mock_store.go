// file: internal/database/mock_store.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package database

import (
	"github.com/jdfalk/book-catalog/internal/models"
)

// MockStore is a simple mock implementation for testing callers of Store.
// Unset funcs return zero values.
type MockStore struct {
	BackendName string

	CloseFunc         func() error
	ResetFunc         func() error
	InsertBooksFunc   func(books []*models.Book) error
	GetBookByNameFunc func(name string) (*models.Book, error)
	GetBookByIDFunc   func(id string) (*models.Book, error)
	GetAllBooksFunc   func(limit, offset int) ([]models.Book, error)
	CountBooksFunc    func() (int, error)

	// Call counters
	InsertCalls int
	LookupCalls int
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) Backend() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockStore) Reset() error {
	if m.ResetFunc != nil {
		return m.ResetFunc()
	}
	return nil
}

func (m *MockStore) InsertBooks(books []*models.Book) error {
	m.InsertCalls++
	if m.InsertBooksFunc != nil {
		return m.InsertBooksFunc(books)
	}
	return nil
}

func (m *MockStore) GetBookByName(name string) (*models.Book, error) {
	m.LookupCalls++
	if m.GetBookByNameFunc != nil {
		return m.GetBookByNameFunc(name)
	}
	return nil, nil
}

func (m *MockStore) GetBookByID(id string) (*models.Book, error) {
	if m.GetBookByIDFunc != nil {
		return m.GetBookByIDFunc(id)
	}
	return nil, nil
}

func (m *MockStore) GetAllBooks(limit, offset int) ([]models.Book, error) {
	if m.GetAllBooksFunc != nil {
		return m.GetAllBooksFunc(limit, offset)
	}
	return nil, nil
}

func (m *MockStore) CountBooks() (int, error) {
	if m.CountBooksFunc != nil {
		return m.CountBooksFunc()
	}
	return 0, nil
}
