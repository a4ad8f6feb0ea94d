// file: internal/database/store_test.go
// version: 1.0.0
// guid: 4c8e2a71-9d3b-4b5f-a6e0-7f1d93c5b820

package database

import (
	"testing"

	"github.com/jdfalk/book-catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreSelectsBackend(t *testing.T) {
	tests := []struct {
		dbType string
		want   string
	}{
		{dbType: "", want: BackendSQLite},
		{dbType: "sqlite", want: BackendSQLite},
		{dbType: "sqlite3", want: BackendSQLite},
		{dbType: "pebble", want: BackendPebble},
	}

	for _, tt := range tests {
		t.Run("type="+tt.dbType, func(t *testing.T) {
			store, err := NewStore(tt.dbType, MemoryPath)
			require.NoError(t, err)
			defer store.Close()
			assert.Equal(t, tt.want, store.Backend())
		})
	}
}

func TestNewStoreRejectsUnknownBackend(t *testing.T) {
	_, err := NewStore("mongodb", MemoryPath)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestNewPostgresStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(BackendPostgres, MemoryPath)
	assert.ErrorContains(t, err, "connection string")
}

func TestInitializeAndCloseStore(t *testing.T) {
	require.NoError(t, InitializeStore(BackendSQLite, MemoryPath))
	require.NotNil(t, GlobalStore)

	sess := NewSession(GlobalStore)
	sess.Add(models.NewBook("Global", "Author", 2000, "Fiction"))
	require.NoError(t, sess.Commit())

	require.NoError(t, CloseStore())
	assert.Nil(t, GlobalStore)
	require.NoError(t, CloseStore())
}

func TestMemoryStoresAreIndependent(t *testing.T) {
	first, err := NewSQLiteStore(MemoryPath)
	require.NoError(t, err)
	defer first.Close()
	second, err := NewSQLiteStore(MemoryPath)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, first.InsertBooks([]*models.Book{models.NewBook("Only Here", "Author", 2000, "Fiction")}))

	count, err := second.CountBooks()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPrepareInsertKeepsExistingValues(t *testing.T) {
	book := models.NewBook("Prepared", "Author", 2000, "Fiction")
	book.ID = "fixed"
	book.Status = models.Str(models.StatusBorrowed)

	require.NoError(t, prepareInsert(book, book.CreatedAt))
	assert.Equal(t, "fixed", book.ID)
	assert.Equal(t, models.StatusBorrowed, *book.Status)

	fresh := models.NewBook("Fresh", "Author", 2000, "Fiction")
	require.NoError(t, prepareInsert(fresh, book.CreatedAt.AddDate(2000, 0, 0)))
	assert.Len(t, fresh.ID, 26)
	assert.Equal(t, models.StatusAvailable, *fresh.Status)
	assert.False(t, fresh.CreatedAt.IsZero())
}
