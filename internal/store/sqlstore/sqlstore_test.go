package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aidin1998/todolist/internal/store/storetest"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "todolist.db")
	s, err := Open(context.Background(), Config{Dialect: DialectSQLite, DSN: dsn}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todo.Store {
		return openSQLite(t)
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TODOLIST_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TODOLIST_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) todo.Store {
		s, err := Open(context.Background(), Config{Dialect: DialectPostgres, DSN: dsn, MaxOpenConns: 4}, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NoError(t, s.DB().Exec("TRUNCATE items, lists, list_items").Error)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Config{Dialect: "oracle"}, nil)
	assert.ErrorContains(t, err, "unsupported sql dialect")
}

func TestBackendName(t *testing.T) {
	assert.Equal(t, DialectSQLite, openSQLite(t).Backend())
}
